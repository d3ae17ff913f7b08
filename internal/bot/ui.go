package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram drops a typing indicator after about five seconds, so it
// is refreshed while a handler is still querying or scraping.
const typingRefreshInterval = 4 * time.Second

// withTyping keeps the chat's typing indicator alive for the duration
// of fn. The indicator goroutine stops as soon as fn returns.
func (b *Bot) withTyping(ctx context.Context, chatID int64, fn func() error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go b.keepTyping(ctx, chatID)

	return fn()
}

func (b *Bot) keepTyping(ctx context.Context, chatID int64) {
	ticker := time.NewTicker(typingRefreshInterval)
	defer ticker.Stop()

	for {
		_, err := b.rateLimiter.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
		if err != nil {
			b.log.ErrorContext(ctx, "Failed to send chat action",
				"error", err,
				"chatID", chatID)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
