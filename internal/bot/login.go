package bot

import (
	"github.com/sewman/uwip-bot/internal/dialog"
	"github.com/sewman/uwip-bot/internal/i18n"
)

func (b *Bot) onCustomerCode(r *req, code string) {
	sc, err := b.app.SubmitCustomerCode(r.ctx, r.chatID, code)
	if err != nil {
		b.fail(r, err)
		// ждём код снова
		r.mid = 0
		b.show(r, renderTenantAsk(r.p))
		return
	}
	setAwait(r.payload(), dialog.AwaitNone)
	b.notify(r.chatID, r.p.T(i18n.TenantSaved, sc.Tenant.CustomerID, sc.Tenant.DatabaseName))
	r.stack().Reset(dialog.Login{})
	r.mid = 0
	b.render(r)
}

func (b *Bot) askUsername(r *req) {
	if !b.app.Scope(r.chatID).HasTenant() {
		b.start(r)
		return
	}
	setAwait(r.payload(), dialog.AwaitUsername)
	b.show(r, view{text: r.p.T(i18n.LoginAskUser), kb: cancelKeyboard(r.p)})
}

func (b *Bot) onUsername(r *req, username string) {
	if username == "" {
		b.show(r, view{text: r.p.T(i18n.LoginAskUser), kb: cancelKeyboard(r.p)})
		return
	}
	r.payload()[dialog.KeyUsername] = username
	setAwait(r.payload(), dialog.AwaitPassword)
	r.mid = 0
	b.show(r, view{text: r.p.T(i18n.LoginAskPassword), kb: cancelKeyboard(r.p)})
}

func (b *Bot) onPassword(r *req, password string) {
	username, _ := dialog.GetString(r.payload(), dialog.KeyUsername)
	remember := dialog.GetBool(r.payload(), dialog.KeyRemember)
	delete(r.payload(), dialog.KeyUsername)
	setAwait(r.payload(), dialog.AwaitNone)
	r.mid = 0

	if _, err := b.app.Login(r.ctx, r.chatID, username, password, remember); err != nil {
		b.fail(r, err)
		r.stack().Reset(dialog.Login{})
		b.render(r)
		return
	}
	r.stack().Reset(dialog.Home{})
	b.render(r)
}

func (b *Bot) logout(r *req) {
	if err := b.app.Logout(r.chatID); err != nil {
		r.log.Error("logout", "err", err)
	}
	b.setDetail(r.chatID, nil)
	r.item.Payload = dialog.Payload{}
	r.stack().Reset(dialog.Login{})
	b.render(r)
}

func (b *Bot) changeTenant(r *req) {
	if err := b.app.ChangeCustomer(r.chatID); err != nil {
		r.log.Error("change customer", "err", err)
	}
	b.setDetail(r.chatID, nil)
	r.item.Payload = dialog.Payload{}
	r.stack().Reset(dialog.Login{})
	setAwait(r.payload(), dialog.AwaitCustomerCode)
	b.show(r, renderTenantAsk(r.p))
}
