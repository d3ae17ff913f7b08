package bot

import (
	"strings"
	"testing"
	"time"

	"pressgram/internal/domain"
)

func TestFormatArticlesAsMessagesKeepsOrder(t *testing.T) {
	now := time.Now()
	articles := []domain.Article{
		{Title: "Newest", URL: "http://x/2", PublishedAt: now, SourceName: "Reuters"},
		{Title: "Older", URL: "http://x/1", PublishedAt: now.Add(-time.Hour), SourceName: "Reuters"},
	}

	messages := formatArticlesAsMessages(articles)

	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	newestIdx := strings.Index(messages[0], "http://x/2")
	olderIdx := strings.Index(messages[0], "http://x/1")

	if newestIdx == -1 || olderIdx == -1 {
		t.Fatalf("expected both article links in message: %q", messages[0])
	}

	if newestIdx > olderIdx {
		t.Fatalf("expected newest article first")
	}
}

func TestFormatArticlesAsMessagesEscapesTitles(t *testing.T) {
	articles := []domain.Article{
		{Title: "Fed hikes rates (again)!", URL: "http://x/1", SourceName: "Bloomberg"},
	}

	messages := formatArticlesAsMessages(articles)

	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	if !strings.Contains(messages[0], `Fed hikes rates \(again\)\!`) {
		t.Fatalf("expected MarkdownV2-escaped title, got %q", messages[0])
	}
}

func TestFormatArticlesAsMessagesSkipsBlankRows(t *testing.T) {
	articles := []domain.Article{
		{Title: "  ", URL: "http://x/1", SourceName: "Reuters"},
		{Title: "Kept", URL: " ", SourceName: "Reuters"},
	}

	if messages := formatArticlesAsMessages(articles); len(messages) != 0 {
		t.Fatalf("expected no messages for blank rows, got %d", len(messages))
	}
}

func TestFormatArticlesAsMessagesSplitsLongOutput(t *testing.T) {
	longTitle := strings.Repeat("word ", 100)

	var articles []domain.Article
	for i := 0; i < 20; i++ {
		articles = append(articles, domain.Article{
			Title:      longTitle,
			URL:        "http://x/long",
			SourceName: "Reuters",
		})
	}

	messages := formatArticlesAsMessages(articles)

	if len(messages) < 2 {
		t.Fatalf("expected output to be split into multiple messages, got %d", len(messages))
	}

	for i, message := range messages {
		if len(message) > telegramMessageMaxLength {
			t.Fatalf("message %d exceeds Telegram limit: %d bytes", i, len(message))
		}
	}
}
