package bot

import (
	"fmt"
	"slices"
	"strings"

	"pressgram/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackMenu            = "back_to_main"
	callbackMenuNews        = "menu_news"
	callbackMenuSubs        = "menu_subscriptions"
	callbackSettings        = "back_to_settings"
	callbackDefaultSource   = "set_default_source"
	callbackPageSize        = "set_items_per_page"
	callbackSubsDone        = "done_subs"
	callbackSourcePrefix    = "set_source_"
	callbackSourceAllSuffix = "all"
	callbackTogglePrefix    = "toggle_sub_"
)

func (b *Bot) sendMessageWithKeyboard(
	chatID int64,
	text string,
	keyboard [][]tgbotapi.InlineKeyboardButton,
) error {
	normalizedText := strings.ToValidUTF8(text, "?")
	if normalizedText != text {
		b.log.Warn("Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalizedText))
	}

	message := tgbotapi.NewMessage(chatID, normalizedText)

	// See https://core.telegram.org/bots/api#markdownv2-style.
	message.ParseMode = tgbotapi.ModeMarkdownV2

	message.DisableWebPagePreview = true
	if keyboard != nil {
		message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	}

	_, err := b.rateLimiter.Send(message)
	return err
}

func (b *Bot) editMessageWithKeyboard(
	chatID int64,
	messageID int,
	text string,
	keyboard [][]tgbotapi.InlineKeyboardButton,
) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID,
		messageID,
		strings.ToValidUTF8(text, "?"),
		tgbotapi.NewInlineKeyboardMarkup(keyboard...),
	)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	edit.DisableWebPagePreview = true

	_, err := b.rateLimiter.Send(edit)
	return err
}

func getMenuKeyboard() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("🗞 Latest news", callbackMenuNews),
			tgbotapi.NewInlineKeyboardButtonData("📬 Subscriptions", callbackMenuSubs),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Settings", callbackSettings),
		},
	}
}

func getReturnKeyboard() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		{tgbotapi.NewInlineKeyboardButtonData("⬅️ Return to menu", callbackMenu)},
	}
}

func getSettingsKeyboard() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		{tgbotapi.NewInlineKeyboardButtonData("🗂 Default source", callbackDefaultSource)},
		{tgbotapi.NewInlineKeyboardButtonData("🔢 News per page", callbackPageSize)},
		{tgbotapi.NewInlineKeyboardButtonData("⬅️ Return to menu", callbackMenu)},
	}
}

func buildSourcePickerKeyboard(sources []domain.Source) [][]tgbotapi.InlineKeyboardButton {
	keyboard := [][]tgbotapi.InlineKeyboardButton{
		{tgbotapi.NewInlineKeyboardButtonData(
			"🌐 All sources",
			callbackSourcePrefix+callbackSourceAllSuffix,
		)},
	}

	for _, source := range sources {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				source.Name,
				fmt.Sprintf("%s%d", callbackSourcePrefix, source.ID),
			),
		})
	}

	return append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", callbackSettings),
	})
}

func buildSubscriptionsKeyboard(
	sources []domain.Source,
	subscribedIDs []int64,
) [][]tgbotapi.InlineKeyboardButton {
	var keyboard [][]tgbotapi.InlineKeyboardButton

	for _, source := range sources {
		marker := "❌"
		if slices.Contains(subscribedIDs, source.ID) {
			marker = "✅"
		}

		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s", marker, source.Name),
				fmt.Sprintf("%s%d", callbackTogglePrefix, source.ID),
			),
		})
	}

	return append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("✔️ Done", callbackSubsDone),
	})
}
