package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"pressgram/internal/domain"
	"pressgram/internal/scraper"
)

const fetchMaxConcurrencyGrowthFactor = 10

// Store is the slice of the persistence layer the coordinator needs.
type Store interface {
	GetSourceByName(ctx context.Context, name string) (*domain.Source, error)
	ArticleURLExists(ctx context.Context, url string) (bool, error)
	InsertArticle(
		ctx context.Context,
		sourceID int64,
		title string,
		url string,
		publishedAt time.Time,
	) error
}

type Coordinator struct {
	store   Store
	fetcher *scraper.Fetcher
	sites   []scraper.Site
	log     *slog.Logger
}

func New(
	store Store,
	fetcher *scraper.Fetcher,
	sites []scraper.Site,
	log *slog.Logger,
) *Coordinator {
	return &Coordinator{
		store:   store,
		fetcher: fetcher,
		sites:   sites,
		log:     log,
	}
}

type sourceBatch struct {
	name      string
	headlines []domain.Headline
}

// Run executes one ingestion cycle: scrape every configured site,
// then dedupe and persist each site's batch. A failure in one batch
// never aborts the others.
func (c *Coordinator) Run(ctx context.Context) error {
	batches := c.fetchAll(ctx)

	var errs []error
	for _, batch := range batches {
		if err := c.persistBatch(ctx, batch); err != nil {
			c.log.ErrorContext(ctx, "Failed to persist source batch",
				"error", err,
				"source", batch.name,
				"headlineCount", len(batch.headlines))

			errs = append(errs, fmt.Errorf("persist batch %q: %w", batch.name, err))
		}
	}

	return errors.Join(errs...)
}

func (c *Coordinator) fetchAll(ctx context.Context) []sourceBatch {
	var wg sync.WaitGroup

	concurrency := min(runtime.NumCPU()*fetchMaxConcurrencyGrowthFactor, len(c.sites))
	semCh := make(chan struct{}, concurrency)
	batchCh := make(chan sourceBatch, len(c.sites))

	for _, site := range c.sites {
		wg.Add(1)
		semCh <- struct{}{}

		go func(site scraper.Site) {
			defer wg.Done()

			headlines := c.fetcher.Parse(ctx, site)
			if len(headlines) != 0 {
				batchCh <- sourceBatch{name: site.SourceName, headlines: headlines}
			}

			<-semCh
		}(site)
	}

	wg.Wait()
	close(batchCh)

	var batches []sourceBatch
	for batch := range batchCh {
		batches = append(batches, batch)
	}

	return batches
}

func (c *Coordinator) persistBatch(ctx context.Context, batch sourceBatch) error {
	source, err := c.store.GetSourceByName(ctx, batch.name)
	if err != nil {
		return fmt.Errorf("get source by name: %w", err)
	}
	if source == nil {
		c.log.WarnContext(ctx, "Source is not seeded, skipping batch",
			"source", batch.name,
			"headlineCount", len(batch.headlines))

		return nil
	}

	var errs []error
	added := 0

	for _, headline := range batch.headlines {
		exists, existsErr := c.store.ArticleURLExists(ctx, headline.URL)
		if existsErr != nil {
			errs = append(errs, fmt.Errorf("check URL existence: %w", existsErr))
			continue
		}
		if exists {
			continue
		}

		if insertErr := c.store.InsertArticle(
			ctx,
			source.ID,
			headline.Title,
			headline.URL,
			time.Now(),
		); insertErr != nil {
			errs = append(errs, fmt.Errorf("insert article: %w", insertErr))
			continue
		}

		added++
	}

	if added > 0 {
		c.log.InfoContext(ctx, "Stored new articles",
			"source", batch.name,
			"added", added,
			"headlineCount", len(batch.headlines))
	}

	return errors.Join(errs...)
}
