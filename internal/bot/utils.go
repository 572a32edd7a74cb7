package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sewman/uwip-bot/internal/dialog"
	"github.com/sewman/uwip-bot/internal/i18n"
	"github.com/sewman/uwip-bot/internal/infra/logger"
)

// req — один апдейт: чат, язык, состояние и сообщение для правки.
type req struct {
	ctx    context.Context
	chatID int64
	mid    int // сообщение с кнопками, которое правим; 0 — отправить новое
	p      *i18n.Printer
	item   *dialog.Item
	log    *slog.Logger
}

func (r *req) stack() *dialog.Stack { return &r.item.Stack }

func (r *req) payload() dialog.Payload {
	if r.item.Payload == nil {
		r.item.Payload = dialog.Payload{}
	}
	return r.item.Payload
}

func (b *Bot) load(ctx context.Context, chatID int64) *dialog.Item {
	it, err := b.states.Get(ctx, chatID)
	if err != nil || it == nil {
		if err != nil {
			logger.Chat(b.log, chatID).Error("load dialog state", "err", err)
		}
		return &dialog.Item{ChatID: chatID, Stack: dialog.NewStack(dialog.Login{}), Payload: dialog.Payload{}}
	}
	return it
}

func (b *Bot) save(r *req) {
	if err := b.states.Set(r.ctx, r.chatID, r.item.Stack, r.payload()); err != nil {
		r.log.Error("save dialog state", "err", err)
	}
}

/*** HELPERS ***/

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	if _, err := b.api.Request(resp); err != nil {
		b.log.Debug("answer callback", "err", err)
	}
}

// clearPrevStep убрать inline-кнопки у прошлого шага, если он был
func (b *Bot) clearPrevStep(r *req) {
	mid, ok := dialog.GetInt(r.payload(), dialog.KeyLastMID)
	if !ok || mid == 0 {
		return
	}
	rm := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	if _, err := b.api.Request(tgbotapi.NewEditMessageReplyMarkup(r.chatID, mid, rm)); err != nil {
		r.log.Debug("clear previous step", "err", err)
	}
}

// show правит текущее сообщение или отправляет новое и запоминает его как «последнее».
func (b *Bot) show(r *req, v view) {
	if r.mid != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(r.chatID, r.mid, v.text, v.kb)
		_, err := b.api.Request(edit)
		if err == nil || strings.Contains(err.Error(), "message is not modified") {
			r.payload()[dialog.KeyLastMID] = float64(r.mid)
			b.save(r)
			return
		}
	}
	b.clearPrevStep(r)
	msg := tgbotapi.NewMessage(r.chatID, v.text)
	if len(v.kb.InlineKeyboard) > 0 {
		msg.ReplyMarkup = v.kb
	}
	if m, ok := b.send(msg); ok {
		r.payload()[dialog.KeyLastMID] = float64(m.MessageID)
		r.mid = m.MessageID
	}
	b.save(r)
}

// notify — короткое сообщение без кнопок.
func (b *Bot) notify(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		logger.Chat(b.log, chatID).Debug("delete message", "err", err)
	}
}

func setAwait(p dialog.Payload, a dialog.Await) {
	if a == dialog.AwaitNone {
		delete(p, dialog.KeyAwait)
		return
	}
	p[dialog.KeyAwait] = string(a)
}

func awaiting(p dialog.Payload) dialog.Await {
	s, _ := dialog.GetString(p, dialog.KeyAwait)
	return dialog.Await(s)
}

// parseQty — целое ≥ 0; пробелы и разделители разрядов игнорируются.
func parseQty(s string) (int, error) {
	s = strings.NewReplacer(" ", "", ".", "", ",", "").Replace(strings.TrimSpace(s))
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad quantity %q", s)
	}
	return n, nil
}

const uiDate = "02/01/2006"

// parseRange разбирает «dd/mm/yyyy-dd/mm/yyyy» или одну дату.
func parseRange(s string, loc *time.Location) (time.Time, time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) > 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("bad range %q", s)
	}
	from, err := time.ParseInLocation(uiDate, strings.TrimSpace(parts[0]), loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to := from
	if len(parts) == 2 {
		if to, err = time.ParseInLocation(uiDate, strings.TrimSpace(parts[1]), loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to.Before(from) {
		from, to = to, from
	}
	return from, to, nil
}

// cbArg — n-й аргумент callback "area:verb:arg".
func cbArg(data string, n int) string {
	parts := strings.Split(data, ":")
	if n < len(parts) {
		return parts[n]
	}
	return ""
}

func cbInt(data string, n int) (int, bool) {
	v, err := strconv.Atoi(cbArg(data, n))
	return v, err == nil
}
