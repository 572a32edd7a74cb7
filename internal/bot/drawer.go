package bot

import (
	"github.com/google/uuid"

	"github.com/sewman/uwip-bot/internal/domain/session"
	"github.com/sewman/uwip-bot/internal/i18n"
)

func (b *Bot) showHome(r *req, sc *session.Scope, refresh bool) {
	h, err := b.app.Home(r.ctx, sc, refresh)
	if err != nil {
		b.fail(r, err)
		return
	}
	b.show(r, renderHome(r.p, h))
}

func (b *Bot) refreshHome(r *req) {
	sc := b.scope(r)
	if sc == nil {
		return
	}
	r.stack().CloseDrawer()
	if _, err := b.app.Home(r.ctx, sc, true); err != nil {
		b.fail(r, err)
	}
	b.render(r)
}

func (b *Bot) showDrawer(r *req, sc *session.Scope) {
	pending, err := b.docs.Pending(r.ctx, sc)
	if err != nil {
		r.log.Warn("pending saves unavailable", "err", err)
	}
	b.show(r, renderDrawer(r.p, sc, len(pending)))
}

func (b *Bot) showPending(r *req) {
	sc := b.scope(r)
	if sc == nil {
		return
	}
	entries, err := b.docs.Pending(r.ctx, sc)
	if err != nil {
		b.fail(r, err)
		return
	}
	r.stack().OpenDrawer()
	b.show(r, renderPending(r.p, entries))
}

// retryPending повторяет шаг 2 сохранения по записи журнала.
func (b *Bot) retryPending(r *req, rawID string) {
	sc := b.scope(r)
	if sc == nil {
		return
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		r.log.Debug("bad journal id", "id", rawID)
		b.render(r)
		return
	}
	res, err := b.docs.RetryDetails(r.ctx, sc, id)
	if err != nil {
		b.failSave(r, err)
		b.render(r)
		return
	}
	b.notify(r.chatID, r.p.T(i18n.SaveOK, res.DocID, res.Total))
	r.stack().CloseDrawer()
	r.mid = 0
	b.render(r)
}
