package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sewman/uwip-bot/internal/app"
	"github.com/sewman/uwip-bot/internal/dialog"
	"github.com/sewman/uwip-bot/internal/domain/session"
	"github.com/sewman/uwip-bot/internal/i18n"
	"github.com/sewman/uwip-bot/internal/infra/logger"
)

func (b *Bot) newReq(ctx context.Context, chatID int64, from *tgbotapi.User, mid int) *req {
	return &req{ctx: ctx, chatID: chatID, mid: mid, p: b.printer(from), item: b.load(ctx, chatID), log: logger.Chat(b.log, chatID)}
}

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	r := b.newReq(ctx, msg.Chat.ID, msg.From, 0)
	if msg.IsCommand() {
		b.handleCommand(r, msg)
		return
	}
	b.handleText(r, msg)
}

func (b *Bot) handleCommand(r *req, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		setAwait(r.payload(), dialog.AwaitNone)
		b.start(r)
	case "home":
		if b.scope(r) == nil {
			return
		}
		r.stack().Reset(dialog.Home{})
		b.render(r)
	case "menu":
		if b.scope(r) == nil {
			return
		}
		r.stack().OpenDrawer()
		b.render(r)
	case "back":
		b.systemBack(r)
	case "help":
		b.notify(r.chatID, r.p.T(i18n.Help))
	default:
		b.notify(r.chatID, r.p.T(i18n.ErrUnknownCmd))
	}
}

// handleText — ввод текста по ожидаемому шагу.
func (b *Bot) handleText(r *req, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	switch awaiting(r.payload()) {
	case dialog.AwaitCustomerCode:
		b.onCustomerCode(r, text)
	case dialog.AwaitUsername:
		b.onUsername(r, text)
	case dialog.AwaitPassword:
		// пароль не оставляем в истории чата
		b.deleteMessage(r.chatID, msg.MessageID)
		b.onPassword(r, text)
	case dialog.AwaitQuantity:
		b.onQuantity(r, text)
	case dialog.AwaitSearch:
		b.onSearch(r, text)
	case dialog.AwaitDateRange:
		b.onDateRange(r, text)
	default:
		if b.app.Scope(r.chatID) == nil {
			b.start(r)
			return
		}
		b.render(r)
	}
}

func (b *Bot) onCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		b.answerCallback(cb, "", false)
		return
	}
	r := b.newReq(ctx, cb.Message.Chat.ID, cb.From, cb.Message.MessageID)
	b.answerCallback(cb, "", false)
	data := cb.Data

	switch {
	case data == "nav:back":
		b.systemBack(r)
	case data == "nav:home":
		if b.scope(r) == nil {
			return
		}
		setAwait(r.payload(), dialog.AwaitNone)
		r.stack().Reset(dialog.Home{})
		b.render(r)
	case data == "nav:stay":
		setAwait(r.payload(), dialog.AwaitNone)
		b.render(r)

	case data == "login:start":
		b.askUsername(r)
	case data == "login:remember":
		r.payload()[dialog.KeyRemember] = !dialog.GetBool(r.payload(), dialog.KeyRemember)
		b.render(r)
	case data == "tenant:change":
		b.show(r, view{text: r.p.T(i18n.ConfirmChange), kb: confirmKeyboard(r.p, "tenant:change:yes")})
	case data == "tenant:change:yes":
		b.changeTenant(r)
	case data == "logout":
		sc := b.scope(r)
		if sc == nil {
			return
		}
		b.show(r, view{text: r.p.T(i18n.ConfirmLogout, sc.Username()), kb: confirmKeyboard(r.p, "logout:yes")})
	case data == "logout:yes":
		b.logout(r)

	case data == "drawer:open":
		if b.scope(r) == nil {
			return
		}
		r.stack().OpenDrawer()
		b.render(r)
	case data == "drawer:close":
		r.stack().CloseDrawer()
		b.render(r)
	case data == "home:refresh":
		b.refreshHome(r)
	case data == "pending:list":
		b.showPending(r)
	case strings.HasPrefix(data, "pending:retry:"):
		b.retryPending(r, strings.TrimPrefix(data, "pending:retry:"))

	case strings.HasPrefix(data, "stage:"):
		b.openStage(r, data)
	case strings.HasPrefix(data, "list:"), strings.HasPrefix(data, "today:"):
		b.onListCallback(r, data)
	case strings.HasPrefix(data, "doc:"):
		b.onDocCallback(r, data)
	default:
		r.log.Debug("unknown callback", "data", data)
	}
}

// start — запуск чата: тенант → вход → главный экран.
func (b *Bot) start(r *req) {
	boot, _, err := b.app.Bootstrap(r.ctx, r.chatID)
	if err != nil {
		r.log.Error("bootstrap", "err", err)
		b.notify(r.chatID, r.p.T(i18n.ErrGeneric))
	}
	switch boot {
	case app.BootReady:
		if r.stack().Current().Kind() == dialog.KindLogin {
			r.stack().Reset(dialog.Home{})
		}
		b.render(r)
	case app.BootNeedLogin:
		r.stack().Reset(dialog.Login{})
		setAwait(r.payload(), dialog.AwaitNone)
		b.render(r)
	default:
		r.stack().Reset(dialog.Login{})
		setAwait(r.payload(), dialog.AwaitCustomerCode)
		b.show(r, renderTenantAsk(r.p))
	}
}

// scope — контекст с активной сессией или nil (тогда уже показан вход).
func (b *Bot) scope(r *req) *session.Scope {
	sc := b.app.Scope(r.chatID)
	if sc.Authenticated() {
		return sc
	}
	boot, sc, err := b.app.Bootstrap(r.ctx, r.chatID)
	if err == nil && boot == app.BootReady {
		return sc
	}
	b.start(r)
	return nil
}

// systemBack: закрыть меню, иначе шаг назад; на корне просто перерисовываем.
func (b *Bot) systemBack(r *req) {
	setAwait(r.payload(), dialog.AwaitNone)
	if r.stack().SystemBack() == dialog.BackUnhandled {
		r.log.Debug("back on root screen")
	}
	b.render(r)
}

// render рисует текущий экран стека.
func (b *Bot) render(r *req) {
	st := r.stack()
	if st.Current().Kind() == dialog.KindLogin {
		sc := b.app.Scope(r.chatID)
		if sc.Authenticated() {
			st.Reset(dialog.Home{})
		} else if !sc.HasTenant() {
			b.start(r)
			return
		} else {
			b.show(r, renderLogin(r.p, sc.Tenant, dialog.GetBool(r.payload(), dialog.KeyRemember)))
			return
		}
	}

	sc := b.scope(r)
	if sc == nil {
		return
	}
	if st.DrawerOpen() {
		b.showDrawer(r, sc)
		return
	}
	switch s := st.Current().(type) {
	case dialog.Home:
		b.showHome(r, sc, false)
	case dialog.DocList:
		b.showList(r, sc, s.Stage, false)
	case dialog.DocsToday:
		b.showToday(r, sc, s.Stage, false)
	case dialog.DocDetail:
		b.showDetail(r, sc, s)
	default:
		st.Reset(dialog.Home{})
		b.showHome(r, sc, false)
	}
}

// fail сообщает об ошибке и оставляет пользователя на рабочем экране.
func (b *Bot) fail(r *req, err error) {
	r.log.Warn("action failed", "kind", classify(err), "err", err)
	b.notify(r.chatID, errorText(r.p, err))
	if classify(err) == KindSession {
		b.start(r)
	}
}
