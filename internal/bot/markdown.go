package bot

import (
	"fmt"
	"strings"
)

// See https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = "_*[]()~`>#+-=|{}.!"

func escapeMarkdownV2(input string) string {
	if !strings.ContainsAny(input, mdV2SpecialChars) {
		return input
	}

	var b strings.Builder
	b.Grow(2 * len(input))

	for i := 0; i < len(input); i++ {
		c := input[i]
		if strings.IndexByte(mdV2SpecialChars, c) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

// articleLine renders one news row as a link bullet with the source
// name appended. Only the title and source name are escaped; the URL
// goes into the link target as is.
func articleLine(title string, url string, sourceName string) string {
	return fmt.Sprintf(
		"– [%s](%s) \\(%s\\)\n\n",
		escapeMarkdownV2(title),
		url,
		escapeMarkdownV2(sourceName),
	)
}
