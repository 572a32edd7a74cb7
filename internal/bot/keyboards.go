package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sewman/uwip-bot/internal/i18n"
)

// view — текст экрана и его кнопки.
type view struct {
	text string
	kb   tgbotapi.InlineKeyboardMarkup
}

func btn(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func row(bs ...tgbotapi.InlineKeyboardButton) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(bs...)
}

func markup(rows ...[]tgbotapi.InlineKeyboardButton) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, r := range rows {
		if len(r) > 0 {
			out = append(out, r)
		}
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: out}
}

// navRow — «назад» и «домой».
func navRow(p *i18n.Printer, back, home bool) []tgbotapi.InlineKeyboardButton {
	r := []tgbotapi.InlineKeyboardButton{}
	if back {
		r = append(r, btn(p.T(i18n.BtnBack), "nav:back"))
	}
	if home {
		r = append(r, btn(p.T(i18n.BtnHome), "nav:home"))
	}
	return r
}

func confirmKeyboard(p *i18n.Printer, yesData string) tgbotapi.InlineKeyboardMarkup {
	return markup(row(
		btn(p.T(i18n.BtnYes), yesData),
		btn(p.T(i18n.BtnNo), "nav:stay"),
	))
}

func cancelKeyboard(p *i18n.Printer) tgbotapi.InlineKeyboardMarkup {
	return markup(row(btn(p.T(i18n.BtnNo), "nav:stay")))
}
