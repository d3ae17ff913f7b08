package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"pressgram/internal/domain"
	"pressgram/internal/ratelimiter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxBackoffSeconds         = 60
	initialBackoffSeconds     = 3
	backoffGrowthFactor       = 2
	resetOffsetBackoffSeconds = 30
	updateProcessingTimeout   = 60 * time.Second

	BotUpdateTimeout = 60
)

// Store is the slice of the persistence layer the handlers need.
type Store interface {
	UpsertUser(ctx context.Context, telegramID int64, username string, fullName string) error
	EnsureSettings(ctx context.Context, telegramID int64) error
	GetSettings(ctx context.Context, telegramID int64) (*domain.UserSettings, error)
	SetItemsPerPage(ctx context.Context, telegramID int64, itemsPerPage int64) error
	SetDefaultSource(ctx context.Context, telegramID int64, sourceID *int64) error
	ListSources(ctx context.Context) ([]domain.Source, error)
	GetSourceByID(ctx context.Context, sourceID int64) (*domain.Source, error)
	IsSubscribed(ctx context.Context, telegramID int64, sourceID int64) (bool, error)
	AddSubscription(ctx context.Context, telegramID int64, sourceID int64) error
	RemoveSubscription(ctx context.Context, telegramID int64, sourceID int64) error
	ListSubscribedSourceIDs(ctx context.Context, telegramID int64) ([]int64, error)
	LatestArticles(ctx context.Context, sourceID *int64, limit int64) ([]domain.Article, error)
}

type Bot struct {
	api            *tgbotapi.BotAPI
	rateLimiter    *ratelimiter.RateLimiter
	db             Store
	pending        *pendingInputs
	menuKeyboard   [][]tgbotapi.InlineKeyboardButton
	returnKeyboard [][]tgbotapi.InlineKeyboardButton
	log            *slog.Logger
}

func New(token string, db Store, log *slog.Logger) (*Bot, error) {
	token = strings.TrimSpace(token)

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:            api,
		rateLimiter:    ratelimiter.New(api, log),
		db:             db,
		pending:        newPendingInputs(),
		menuKeyboard:   getMenuKeyboard(),
		returnKeyboard: getReturnKeyboard(),
		log:            log,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = BotUpdateTimeout

	backoffSeconds := initialBackoffSeconds

	for {
		select {
		case <-ctx.Done():
			b.log.InfoContext(ctx, "Bot context is done",
				"error", ctx.Err())
			return
		default:
		}

		updates := b.api.GetUpdatesChan(updateConfig)
		updatesClosed := false

		for !updatesClosed {
			select {
			case <-ctx.Done():
				b.log.InfoContext(ctx, "Bot context is done",
					"error", ctx.Err())
				return

			case update, ok := <-updates:
				if !ok {
					updatesClosed = true
					continue
				}
				updateConfig.Offset = update.UpdateID + 1

				b.handleUpdate(ctx, &update)
			}
		}

		if ctx.Err() != nil {
			return
		}

		b.log.WarnContext(ctx, "Update channel is closed, reconnecting...",
			"offset", updateConfig.Offset,
			"backoffSeconds", backoffSeconds)

		time.Sleep(time.Duration(backoffSeconds) * time.Second)

		backoffSeconds = updateBackoffSeconds(backoffSeconds)

		if backoffSeconds >= resetOffsetBackoffSeconds {
			updateConfig.Offset = 0
		}
	}
}

// handleUpdate is the top-level recovery point: a handler error is
// logged here and, where possible, already answered to the user with a
// generic failure message further down; the serving loop never stops.
func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil && update.Message.From != nil:
		if err := b.handleMessage(updateCtx, update.Message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", update.Message.Chat.ID,
				"userID", update.Message.From.ID,
				"messageID", update.Message.MessageID)
		}

	case update.CallbackQuery != nil:
		if err := b.handleCallbackQuery(updateCtx, update.CallbackQuery); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"chatID", callbackChatID(update.CallbackQuery),
				"userID", update.CallbackQuery.From.ID,
				"data", update.CallbackQuery.Data)
		}
	}
}

func (b *Bot) Stop() {
	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func callbackChatID(cb *tgbotapi.CallbackQuery) int64 {
	if cb != nil && cb.Message != nil && cb.Message.Chat != nil {
		return cb.Message.Chat.ID
	}

	return 0
}

func updateBackoffSeconds(backoffSeconds int) int {
	if backoffSeconds < maxBackoffSeconds {
		backoffSeconds *= backoffGrowthFactor
		if backoffSeconds > maxBackoffSeconds {
			backoffSeconds = maxBackoffSeconds
		}
	}
	return backoffSeconds
}
