package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/language"

	"github.com/sewman/uwip-bot/internal/app"
	"github.com/sewman/uwip-bot/internal/dialog"
	"github.com/sewman/uwip-bot/internal/domain/documents"
	"github.com/sewman/uwip-bot/internal/i18n"
)

// API — часть *tgbotapi.BotAPI, которой пользуется бот.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// StateStore — навигация и черновики чата (dialog.Repo).
type StateStore interface {
	Get(ctx context.Context, chatID int64) (*dialog.Item, error)
	Set(ctx context.Context, chatID int64, st dialog.Stack, payload dialog.Payload) error
	Reset(ctx context.Context, chatID int64) error
}

type Bot struct {
	api    API
	log    *slog.Logger
	states StateStore
	app    *app.Service
	docs   *documents.Service
	lang   language.Tag
	loc    *time.Location

	mu      sync.Mutex
	details map[int64]*documents.Detail
}

func New(api API, log *slog.Logger, states StateStore, a *app.Service, lang language.Tag, loc *time.Location) *Bot {
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		api:     api,
		log:     log,
		states:  states,
		app:     a,
		docs:    a.Documents(),
		lang:    lang,
		loc:     loc,
		details: map[int64]*documents.Detail{},
	}
}

// Run — единственный цикл обработки апдейтов: у состояния чата один писатель.
func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.handle(ctx, upd)
		}
	}
}

func (b *Bot) handle(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("update handler panic", "panic", r, "update_id", upd.UpdateID)
		}
	}()
	switch {
	case upd.Message != nil:
		b.onMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		b.onCallback(ctx, upd.CallbackQuery)
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) (tgbotapi.Message, bool) {
	m, err := b.api.Send(msg)
	if err != nil {
		b.log.Error("send failed", "err", err)
		return m, false
	}
	return m, true
}

func (b *Bot) printer(from *tgbotapi.User) *i18n.Printer {
	if from == nil {
		return i18n.New(b.lang)
	}
	return i18n.New(i18n.Parse(from.LanguageCode, b.lang))
}

func (b *Bot) detail(chatID int64) *documents.Detail {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.details[chatID]
}

func (b *Bot) setDetail(chatID int64, d *documents.Detail) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d == nil {
		delete(b.details, chatID)
		return
	}
	b.details[chatID] = d
}
