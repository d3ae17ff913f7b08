package ratelimiter

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestGetDelay(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		chatID   int64
		lastSent time.Time
		wantZero bool
	}{
		{
			"private chat, rate window passed",
			123456789,
			now.Add(-2 * time.Second),
			true,
		},
		{
			"private chat, delay needed",
			123456789,
			now.Add(-500 * time.Millisecond),
			false,
		},
		{
			"group chat, rate window passed",
			-123456789,
			now.Add(-4 * time.Second),
			true,
		},
		{
			"group chat, delay needed",
			-123456789,
			now.Add(-1 * time.Second),
			false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := getDelay(test.chatID, test.lastSent)

			if test.wantZero && got > 0 {
				t.Errorf("expected zero delay, got %v", got)
			}

			if !test.wantZero && got <= 0 {
				t.Errorf("expected positive delay, got %v", got)
			}
		})
	}
}

func stoppedRateLimiter() *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	return &RateLimiter{
		queue:    make(chan request, queueSize),
		lastSent: make(map[int64]time.Time),
		ctx:      ctx,
		cancel:   cancel,
		log:      slog.Default(),
	}
}

func TestSendAfterStopFailsWithoutPanic(t *testing.T) {
	rl := stoppedRateLimiter()

	for i := 0; i < 3; i++ {
		_, err := rl.Send(tgbotapi.NewMessage(12345, "test"))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	}
}

func TestProcessQueueDrainsBufferedRequestsOnStop(t *testing.T) {
	rl := stoppedRateLimiter()

	req := request{
		message:  tgbotapi.NewMessage(12345, "test"),
		response: make(chan response, 1),
	}
	rl.queue <- req

	rl.processQueue()

	select {
	case resp := <-req.response:
		if !errors.Is(resp.err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", resp.err)
		}
	default:
		t.Fatal("expected a response for the buffered request")
	}
}

func TestGetChatID(t *testing.T) {
	tests := []struct {
		name    string
		message tgbotapi.Chattable
		want    int64
	}{
		{
			"MessageConfig",
			tgbotapi.NewMessage(12345, "test"),
			12345,
		},
		{
			"EditMessageTextConfig",
			tgbotapi.NewEditMessageText(54321, 7, "test"),
			54321,
		},
		{
			"ChatActionConfig",
			tgbotapi.NewChatAction(67890, tgbotapi.ChatTyping),
			67890,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := getChatID(test.message); got != test.want {
				t.Errorf("expected %d, got %d", test.want, got)
			}
		})
	}
}
