package bot

import (
	"strings"

	"pressgram/internal/domain"
)

const telegramMessageMaxLength = 4096

// formatArticlesAsMessages renders articles in the order given (the
// store already sorted them by published timestamp descending) and
// splits the output so no single message exceeds the Telegram limit.
func formatArticlesAsMessages(articles []domain.Article) []string {
	var messages []string
	var currentMessage strings.Builder

	currentMessage.WriteString("🗞 *Latest news*\n\n")
	headerLength := currentMessage.Len()

	for _, article := range articles {
		title := strings.TrimSpace(article.Title)
		url := strings.TrimSpace(article.URL)
		if title == "" || url == "" {
			continue
		}

		line := articleLine(title, url, article.SourceName)

		if currentMessage.Len()+len(line) > telegramMessageMaxLength {
			messages = append(messages, currentMessage.String())
			currentMessage.Reset()
			currentMessage.WriteString("🗞 *Latest news \\(continue\\)*\n\n")
		}

		currentMessage.WriteString(line)
	}

	if currentMessage.Len() > headerLength {
		messages = append(messages, currentMessage.String())
	}

	return messages
}
