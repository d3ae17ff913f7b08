package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil || callback.Message.Chat == nil {
		return nil
	}

	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID
	userID := callback.From.ID

	return b.withTyping(ctx, chatID, func() error {
		data := strings.TrimSpace(callback.Data)

		switch data {
		case callbackMenu:
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.editMessageWithKeyboard(
					chatID,
					messageID,
					"❔ *Choose an option:*",
					b.menuKeyboard,
				)
			})
		case callbackMenuNews:
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handleNewsCommand(ctx, chatID, userID)
			})
		case callbackMenuSubs:
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handleSubscriptionsCommand(ctx, chatID, userID, 0)
			})
		case callbackSettings:
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handleSettingsCommand(ctx, chatID, userID, messageID)
			})
		case callbackDefaultSource:
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handleSourcePickerQuery(ctx, chatID, messageID)
			})
		case callbackPageSize:
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handlePageSizePromptQuery(chatID, messageID, userID)
			})
		case callbackSubsDone:
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.editMessageWithKeyboard(
					chatID,
					messageID,
					"✅ Subscriptions are saved\\.",
					b.returnKeyboard,
				)
			})
		}

		if sourceIDStr, ok := strings.CutPrefix(data, callbackSourcePrefix); ok {
			return b.handleSetSourceQuery(ctx, sourceIDStr, callback)
		}

		if sourceIDStr, ok := strings.CutPrefix(data, callbackTogglePrefix); ok {
			return b.handleToggleSubscriptionQuery(ctx, sourceIDStr, callback)
		}

		return nil
	})
}

func (b *Bot) handleSourcePickerQuery(
	ctx context.Context,
	chatID int64,
	messageID int,
) error {
	sources, err := b.db.ListSources(ctx)
	if err != nil {
		return b.failWithGeneric(chatID, fmt.Errorf("list sources: %w", err))
	}

	return b.editMessageWithKeyboard(
		chatID,
		messageID,
		"🗂 *Choose a default source:*",
		buildSourcePickerKeyboard(sources),
	)
}

func (b *Bot) handlePageSizePromptQuery(chatID int64, messageID int, userID int64) error {
	if err := b.editMessageWithKeyboard(
		chatID,
		messageID,
		fmt.Sprintf(
			"🔢 Send the number of news per page \\(%d\\-%d\\):",
			minItemsPerPage,
			maxItemsPerPage,
		),
		b.returnKeyboard,
	); err != nil {
		return fmt.Errorf("edit message with keyboard: %w", err)
	}

	// The next plain text message from this user is the value.
	b.pending.await(userID)

	return nil
}

func (b *Bot) handleSetSourceQuery(
	ctx context.Context,
	sourceIDStr string,
	callback *tgbotapi.CallbackQuery,
) error {
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID
	userID := callback.From.ID

	var sourceID *int64

	sourceIDStr = strings.TrimSpace(sourceIDStr)
	if sourceIDStr != callbackSourceAllSuffix {
		parsed, err := strconv.ParseInt(sourceIDStr, 10, 64)
		if err != nil {
			return b.errorCallbackAnswer(callback, fmt.Errorf("parse sourceID: %w", err))
		}

		source, err := b.db.GetSourceByID(ctx, parsed)
		if err != nil {
			return b.errorCallbackAnswer(callback, fmt.Errorf("get source by ID: %w", err))
		}
		if source == nil {
			return b.errorCallbackAnswer(callback, fmt.Errorf("unknown source %d", parsed))
		}

		sourceID = &parsed
	}

	if err := b.db.SetDefaultSource(ctx, userID, sourceID); err != nil {
		return b.errorCallbackAnswer(callback, fmt.Errorf("set default source: %w", err))
	}

	if _, err := b.rateLimiter.Request(
		tgbotapi.NewCallback(callback.ID, "✅ Settings are updated."),
	); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	return b.handleSettingsCommand(ctx, chatID, userID, messageID)
}

// toggleSubscription flips the (user, source) pair and reports the
// resulting state. Toggling twice restores the original state.
func (b *Bot) toggleSubscription(
	ctx context.Context,
	userID int64,
	sourceID int64,
) (bool, error) {
	subscribed, err := b.db.IsSubscribed(ctx, userID, sourceID)
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}

	if subscribed {
		err = b.db.RemoveSubscription(ctx, userID, sourceID)
	} else {
		err = b.db.AddSubscription(ctx, userID, sourceID)
	}
	if err != nil {
		return false, fmt.Errorf("toggle subscription: %w", err)
	}

	return !subscribed, nil
}

func (b *Bot) handleToggleSubscriptionQuery(
	ctx context.Context,
	sourceIDStr string,
	callback *tgbotapi.CallbackQuery,
) error {
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID
	userID := callback.From.ID

	sourceID, err := strconv.ParseInt(strings.TrimSpace(sourceIDStr), 10, 64)
	if err != nil {
		return b.errorCallbackAnswer(callback, fmt.Errorf("parse sourceID: %w", err))
	}

	subscribed, err := b.toggleSubscription(ctx, userID, sourceID)
	if err != nil {
		return b.errorCallbackAnswer(callback, err)
	}

	b.log.InfoContext(ctx, "Subscription is toggled",
		"userID", userID,
		"sourceID", sourceID,
		"subscribed", subscribed)

	if _, err = b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	return b.handleSubscriptionsCommand(ctx, chatID, userID, messageID)
}

func (b *Bot) withEmptyCallbackAnswer(
	callback *tgbotapi.CallbackQuery,
	fn func() error,
) error {
	var errs []error

	if _, err := b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		errs = append(errs, b.errorCallbackAnswer(callback, fmt.Errorf("send request: %w", err)))
	}

	err := fn()
	if err != nil {
		errs = append(errs, fmt.Errorf("call fn: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) errorCallbackAnswer(
	callback *tgbotapi.CallbackQuery,
	err error,
) error {
	if _, sendErr := b.rateLimiter.Request(
		tgbotapi.NewCallback(callback.ID, "❌ Failed."),
	); sendErr != nil {
		return errors.Join(err, fmt.Errorf("send request: %w", sendErr))
	}
	return err
}
