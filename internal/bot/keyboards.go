package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/grabtik/grabtik-bot/internal/model"
)

const (
	buttonAccount = "👤 Account"
	buttonPremium = "⭐ Premium"
	buttonAdmin   = "🛠 Admin"

	buttonStats    = "👥 User stats"
	buttonAddAd    = "➕ Add ad"
	buttonListAds  = "📋 List ads"
	buttonDeleteAd = "❌ Delete ad"
	buttonBack     = "⬅️ Back"
)

// mainKeyboard is the persistent reply keyboard. The operator gets an
// extra admin row.
func mainKeyboard(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonAccount),
			tgbotapi.NewKeyboardButton(buttonPremium),
		),
	}
	if isAdmin {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonAdmin)))
	}

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func adminKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonStats)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonAddAd)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonListAds)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonDeleteAd)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonBack)),
	)
	kb.ResizeKeyboard = true
	return kb
}

// formatKeyboard offers one button per asset the descriptor carries.
func formatKeyboard(desc model.MediaDescriptor) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if desc.HasFormat(model.FormatVideo) {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("📹 MP4", "fmt:video"))
	}
	if desc.HasFormat(model.FormatAudio) {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🎵 MP3", "fmt:audio"))
	}
	if desc.HasFormat(model.FormatImages) {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🖼 Images", "fmt:images"))
	}

	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func premiumKeyboard(priceStars int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("⭐ Buy Premium (%d Stars)", priceStars),
				"buy_premium",
			),
		),
	)
}

// adGateKeyboard presents the ad link plus the continue action that
// releases the download. The callback carries the session generation.
func adGateKeyboard(adURL string, generation uint64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 Open sponsor link", adURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➡️ Continue", fmt.Sprintf("go:%d", generation)),
		),
	)
}
