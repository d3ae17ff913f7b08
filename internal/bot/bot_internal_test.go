package bot

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"pressgram/internal/database"
	"pressgram/internal/domain"
)

var _ Store = (*database.Database)(nil)

// fakeStore mirrors the persistence semantics in memory: settings
// default to five items per page with no default source, subscription
// writes are idempotent, and LatestArticles filters by source, sorts
// by published timestamp descending and applies the limit.
type fakeStore struct {
	users    map[int64]domain.User
	settings map[int64]domain.UserSettings
	sources  map[int64]domain.Source
	subs     map[[2]int64]struct{}
	articles []domain.Article
}

func newFakeStore(sources ...domain.Source) *fakeStore {
	s := &fakeStore{
		users:    make(map[int64]domain.User),
		settings: make(map[int64]domain.UserSettings),
		sources:  make(map[int64]domain.Source),
		subs:     make(map[[2]int64]struct{}),
	}

	for _, source := range sources {
		s.sources[source.ID] = source
	}

	return s
}

func (s *fakeStore) UpsertUser(
	_ context.Context,
	telegramID int64,
	username string,
	fullName string,
) error {
	s.users[telegramID] = domain.User{
		ID:         telegramID,
		TelegramID: telegramID,
		Username:   username,
		FullName:   fullName,
	}

	return nil
}

func (s *fakeStore) EnsureSettings(_ context.Context, telegramID int64) error {
	if _, ok := s.settings[telegramID]; !ok {
		s.settings[telegramID] = domain.UserSettings{
			UserID:       telegramID,
			ItemsPerPage: 5,
		}
	}

	return nil
}

func (s *fakeStore) GetSettings(
	_ context.Context,
	telegramID int64,
) (*domain.UserSettings, error) {
	settings, ok := s.settings[telegramID]
	if !ok {
		return nil, nil
	}

	return &settings, nil
}

func (s *fakeStore) SetItemsPerPage(
	_ context.Context,
	telegramID int64,
	itemsPerPage int64,
) error {
	settings := s.settings[telegramID]
	settings.ItemsPerPage = itemsPerPage
	s.settings[telegramID] = settings

	return nil
}

func (s *fakeStore) SetDefaultSource(
	_ context.Context,
	telegramID int64,
	sourceID *int64,
) error {
	settings := s.settings[telegramID]
	settings.DefaultSourceID = sourceID
	s.settings[telegramID] = settings

	return nil
}

func (s *fakeStore) ListSources(_ context.Context) ([]domain.Source, error) {
	sources := make([]domain.Source, 0, len(s.sources))
	for _, source := range s.sources {
		sources = append(sources, source)
	}

	slices.SortFunc(sources, func(a, b domain.Source) int {
		return int(a.ID - b.ID)
	})

	return sources, nil
}

func (s *fakeStore) GetSourceByID(
	_ context.Context,
	sourceID int64,
) (*domain.Source, error) {
	source, ok := s.sources[sourceID]
	if !ok {
		return nil, nil
	}

	return &source, nil
}

func (s *fakeStore) IsSubscribed(
	_ context.Context,
	telegramID int64,
	sourceID int64,
) (bool, error) {
	_, ok := s.subs[[2]int64{telegramID, sourceID}]

	return ok, nil
}

func (s *fakeStore) AddSubscription(
	_ context.Context,
	telegramID int64,
	sourceID int64,
) error {
	s.subs[[2]int64{telegramID, sourceID}] = struct{}{}

	return nil
}

func (s *fakeStore) RemoveSubscription(
	_ context.Context,
	telegramID int64,
	sourceID int64,
) error {
	delete(s.subs, [2]int64{telegramID, sourceID})

	return nil
}

func (s *fakeStore) ListSubscribedSourceIDs(
	_ context.Context,
	telegramID int64,
) ([]int64, error) {
	var ids []int64
	for key := range s.subs {
		if key[0] == telegramID {
			ids = append(ids, key[1])
		}
	}

	slices.Sort(ids)

	return ids, nil
}

func (s *fakeStore) LatestArticles(
	_ context.Context,
	sourceID *int64,
	limit int64,
) ([]domain.Article, error) {
	var articles []domain.Article
	for _, article := range s.articles {
		if sourceID == nil || article.SourceID == *sourceID {
			articles = append(articles, article)
		}
	}

	slices.SortFunc(articles, func(a, b domain.Article) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})

	if int64(len(articles)) > limit {
		articles = articles[:limit]
	}

	return articles, nil
}

func (s *fakeStore) addArticle(sourceID int64, title, url string, publishedAt time.Time) {
	s.articles = append(s.articles, domain.Article{
		ID:          int64(len(s.articles) + 1),
		SourceID:    sourceID,
		Title:       title,
		URL:         url,
		PublishedAt: publishedAt,
		SourceName:  s.sources[sourceID].Name,
	})
}

func newTestBot(store Store) *Bot {
	return &Bot{
		db:      store,
		pending: newPendingInputs(),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// A fresh user registers, subscribes to a source, ingests nothing
// themselves, and still receives an article stored for that source.
func TestNewUserReceivesStoredArticle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(domain.Source{ID: 3, Name: "Reuters", BaseURL: "http://reuters.com"})
	b := newTestBot(store)

	if err := store.UpsertUser(ctx, 42, "reader", "Test Reader"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.EnsureSettings(ctx, 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	subscribed, err := b.toggleSubscription(ctx, 42, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !subscribed {
		t.Fatal("expected the toggle to subscribe the user")
	}

	store.addArticle(3, "A", "http://x/1", time.Now())

	articles, initialized, err := b.latestForUser(ctx, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !initialized {
		t.Fatal("expected the user to be initialized")
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}

	messages := formatArticlesAsMessages(articles)
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if !strings.Contains(messages[0], "[A](http://x/1)") {
		t.Fatalf("expected the message to link the article, got %q", messages[0])
	}
}
