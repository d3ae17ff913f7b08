package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	minItemsPerPage = 1
	maxItemsPerPage = 20
)

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	return b.withTyping(ctx, message.Chat.ID, func() error {
		text := strings.TrimSpace(message.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			return b.handleStartCommand(ctx, message.Chat.ID, message.From)
		case strings.HasPrefix(text, "/news"):
			return b.handleNewsCommand(ctx, message.Chat.ID, message.From.ID)
		case strings.HasPrefix(text, "/settings"):
			return b.handleSettingsCommand(ctx, message.Chat.ID, message.From.ID, 0)
		case strings.HasPrefix(text, "/subscriptions"):
			return b.handleSubscriptionsCommand(ctx, message.Chat.ID, message.From.ID, 0)
		case strings.HasPrefix(text, "/help"):
			return b.handleHelpCommand(message.Chat.ID)
		default:
			return b.handlePlainText(ctx, text, message.Chat.ID, message.From.ID)
		}
	})
}

func (b *Bot) handlePlainText(
	ctx context.Context,
	text string,
	chatID int64,
	userID int64,
) error {
	if !b.pending.consume(userID) {
		return b.sendMessageWithKeyboard(
			chatID,
			"🤔 I only understand commands\\. Try /help\\.",
			b.returnKeyboard,
		)
	}

	return b.handlePageSizeInput(ctx, text, chatID, userID)
}

// handlePageSizeInput runs once per awaiting user: invalid input gets a
// corrective message and the user must re-open the settings menu to
// try again.
func (b *Bot) handlePageSizeInput(
	ctx context.Context,
	text string,
	chatID int64,
	userID int64,
) error {
	count, err := b.applyPageSize(ctx, userID, text)
	if err != nil {
		if errors.Is(err, errInvalidPageSize) {
			return b.sendMessageWithKeyboard(
				chatID,
				fmt.Sprintf(
					"❌ Please send a number from %d to %d\\. Re\\-open /settings to try again\\.",
					minItemsPerPage,
					maxItemsPerPage,
				),
				b.returnKeyboard,
			)
		}

		errs := []error{err}

		sendErr := b.sendMessageWithKeyboard(chatID, "❌ Failed\\.", b.returnKeyboard)
		if sendErr != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	return b.sendMessageWithKeyboard(
		chatID,
		fmt.Sprintf("✅ News per page set to %d\\.", count),
		b.returnKeyboard,
	)
}

// applyPageSize stores the new page size only when the input parses
// and is in range; rejected input leaves the stored value untouched.
func (b *Bot) applyPageSize(ctx context.Context, userID int64, text string) (int64, error) {
	count, err := parsePageSize(text)
	if err != nil {
		return 0, err
	}

	if err = b.db.SetItemsPerPage(ctx, userID, count); err != nil {
		return 0, fmt.Errorf("set items per page: %w", err)
	}

	return count, nil
}

var errInvalidPageSize = errors.New("invalid page size")

func parsePageSize(text string) (int64, error) {
	count, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errInvalidPageSize, err)
	}

	if count < minItemsPerPage || count > maxItemsPerPage {
		return 0, fmt.Errorf(
			"%w: %d is out of [%d, %d]",
			errInvalidPageSize,
			count,
			minItemsPerPage,
			maxItemsPerPage,
		)
	}

	return count, nil
}
