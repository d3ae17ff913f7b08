package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pressgram/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const welcomeText = `👋 *Hi, %s\!*

I collect fresh headlines from Bloomberg, Коммерсантъ, Reuters and ТАСС every half hour and keep them for you\.

%s`

const helpText = `*Available commands:*

%s`

const commandList = `/start – register and show this menu
/news – latest news per your settings
/settings – default source and page size
/subscriptions – follow or unfollow sources
/help – command list`

const settingsText = `*⚙️ Settings*

News per page: %s\.
Default source: %s\.

Choose a setting below:`

func (b *Bot) handleStartCommand(
	ctx context.Context,
	chatID int64,
	from *tgbotapi.User,
) error {
	fullName := strings.TrimSpace(strings.TrimSpace(from.FirstName) + " " + strings.TrimSpace(from.LastName))

	if err := b.db.UpsertUser(ctx, from.ID, from.UserName, fullName); err != nil {
		return b.failWithGeneric(chatID, fmt.Errorf("upsert user: %w", err))
	}

	if err := b.db.EnsureSettings(ctx, from.ID); err != nil {
		return b.failWithGeneric(chatID, fmt.Errorf("ensure settings: %w", err))
	}

	b.log.InfoContext(ctx, "User is registered",
		"userID", from.ID,
		"username", from.UserName)

	name := fullName
	if name == "" {
		name = from.UserName
	}

	return b.sendMessageWithKeyboard(
		chatID,
		fmt.Sprintf(welcomeText, escapeMarkdownV2(name), escapeMarkdownV2(commandList)),
		b.menuKeyboard,
	)
}

// latestForUser resolves the user's settings into a news query: the
// default source narrows the feed and the page size caps it. The bool
// result reports whether the user has been initialized via /start.
func (b *Bot) latestForUser(ctx context.Context, userID int64) ([]domain.Article, bool, error) {
	settings, err := b.db.GetSettings(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("get settings: %w", err)
	}
	if settings == nil {
		return nil, false, nil
	}

	articles, err := b.db.LatestArticles(ctx, settings.DefaultSourceID, settings.ItemsPerPage)
	if err != nil {
		return nil, true, fmt.Errorf("get latest articles: %w", err)
	}

	return articles, true, nil
}

func (b *Bot) handleNewsCommand(ctx context.Context, chatID int64, userID int64) error {
	articles, initialized, err := b.latestForUser(ctx, userID)
	if err != nil {
		return b.failWithGeneric(chatID, err)
	}
	if !initialized {
		return b.sendMessageWithKeyboard(
			chatID,
			"⚠️ Your settings are not found\\. Use /start to initialize\\.",
			b.returnKeyboard,
		)
	}

	if len(articles) == 0 {
		return b.sendMessageWithKeyboard(
			chatID,
			"✖️ No news yet\\. Try again later\\.",
			b.returnKeyboard,
		)
	}

	var errs []error
	for _, message := range formatArticlesAsMessages(articles) {
		if err = b.sendMessageWithKeyboard(chatID, message, b.returnKeyboard); err != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", err))
		}
	}

	return errors.Join(errs...)
}

// handleSettingsCommand renders the settings menu; messageID != 0 means
// the menu replaces an existing keyboard message.
func (b *Bot) handleSettingsCommand(
	ctx context.Context,
	chatID int64,
	userID int64,
	messageID int,
) error {
	settings, err := b.db.GetSettings(ctx, userID)
	if err != nil {
		return b.failWithGeneric(chatID, fmt.Errorf("get settings: %w", err))
	}
	if settings == nil {
		return b.sendMessageWithKeyboard(
			chatID,
			"⚠️ Your settings are not found\\. Use /start to initialize\\.",
			b.returnKeyboard,
		)
	}

	defaultSourceName := "all sources"
	if settings.DefaultSourceID != nil {
		source, sourceErr := b.db.GetSourceByID(ctx, *settings.DefaultSourceID)
		if sourceErr != nil {
			return b.failWithGeneric(chatID, fmt.Errorf("get source by ID: %w", sourceErr))
		}
		if source != nil {
			defaultSourceName = source.Name
		}
	}

	text := fmt.Sprintf(
		settingsText,
		escapeMarkdownV2(fmt.Sprintf("%d", settings.ItemsPerPage)),
		escapeMarkdownV2(defaultSourceName),
	)

	if messageID != 0 {
		return b.editMessageWithKeyboard(chatID, messageID, text, getSettingsKeyboard())
	}

	return b.sendMessageWithKeyboard(chatID, text, getSettingsKeyboard())
}

func (b *Bot) handleSubscriptionsCommand(
	ctx context.Context,
	chatID int64,
	userID int64,
	messageID int,
) error {
	sources, err := b.db.ListSources(ctx)
	if err != nil {
		return b.failWithGeneric(chatID, fmt.Errorf("list sources: %w", err))
	}

	subscribedIDs, err := b.db.ListSubscribedSourceIDs(ctx, userID)
	if err != nil {
		return b.failWithGeneric(chatID, fmt.Errorf("list subscribed source IDs: %w", err))
	}

	text := "📬 *Manage subscriptions\\.* Tap a source to toggle it:"
	keyboard := buildSubscriptionsKeyboard(sources, subscribedIDs)

	if messageID != 0 {
		return b.editMessageWithKeyboard(chatID, messageID, text, keyboard)
	}

	return b.sendMessageWithKeyboard(chatID, text, keyboard)
}

func (b *Bot) handleHelpCommand(chatID int64) error {
	return b.sendMessageWithKeyboard(
		chatID,
		fmt.Sprintf(helpText, escapeMarkdownV2(commandList)),
		b.menuKeyboard,
	)
}

// failWithGeneric reports a generic failure to the user and carries the
// underlying cause up to the logging layer.
func (b *Bot) failWithGeneric(chatID int64, err error) error {
	errs := []error{err}

	if sendErr := b.sendMessageWithKeyboard(chatID, "❌ Failed\\.", b.returnKeyboard); sendErr != nil {
		errs = append(errs, fmt.Errorf("send message with keyboard: %w", sendErr))
	}

	return errors.Join(errs...)
}
