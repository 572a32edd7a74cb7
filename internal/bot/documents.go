package bot

import (
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sewman/uwip-bot/internal/dialog"
	"github.com/sewman/uwip-bot/internal/domain/documents"
	"github.com/sewman/uwip-bot/internal/domain/session"
	"github.com/sewman/uwip-bot/internal/i18n"
)

// openStage — "stage:list:N" или "stage:today:N" с главного экрана.
func (b *Bot) openStage(r *req, data string) {
	sc := b.scope(r)
	if sc == nil {
		return
	}
	n, ok := cbInt(data, 2)
	st := documents.Stage(n)
	if !ok || !st.Valid() {
		b.render(r)
		return
	}
	resetListState(r.payload())
	if cbArg(data, 1) == "today" {
		r.stack().Navigate(dialog.DocsToday{Stage: st})
	} else {
		r.stack().Navigate(dialog.DocList{Stage: st})
	}
	b.render(r)
}

func resetListState(p dialog.Payload) {
	delete(p, dialog.KeyShown)
	delete(p, dialog.KeyQuery)
	delete(p, dialog.KeyPage)
	delete(p, dialog.KeyFromDate)
	delete(p, dialog.KeyToDate)
}

// listRange — период из payload; пустой — «сегодня».
func (b *Bot) listRange(p dialog.Payload) documents.DateRange {
	from, _ := dialog.GetString(p, dialog.KeyFromDate)
	to, _ := dialog.GetString(p, dialog.KeyToDate)
	f, err1 := time.ParseInLocation(time.DateOnly, from, b.loc)
	t, err2 := time.ParseInLocation(time.DateOnly, to, b.loc)
	if err1 != nil || err2 != nil {
		return documents.Today(b.docs.Now().In(b.loc))
	}
	return documents.DateRange{From: f, To: t}
}

// currentItems — список текущего экрана (из кэша) с учётом фильтра.
func (b *Bot) currentItems(r *req, sc *session.Scope, refresh bool) (documents.Stage, string, []documents.Master, int, error) {
	query, _ := dialog.GetString(r.payload(), dialog.KeyQuery)
	var (
		st   documents.Stage
		area string
		all  []documents.Master
		err  error
	)
	switch s := r.stack().Current().(type) {
	case dialog.DocList:
		st, area = s.Stage, "list"
		all, err = b.docs.List(r.ctx, sc, s.Stage, b.listRange(r.payload()), refresh)
	case dialog.DocsToday:
		st, area = s.Stage, "today"
		all, err = b.docs.Today(r.ctx, sc, s.Stage, refresh)
	default:
		return 0, "", nil, 0, errors.New("not a list screen")
	}
	if err != nil {
		return st, area, nil, 0, err
	}
	return st, area, documents.Filter(all, query), len(all), nil
}

func (b *Bot) showList(r *req, sc *session.Scope, st documents.Stage, refresh bool) {
	rg := b.listRange(r.payload())
	b.showListView(r, sc, listTitle(r.p, st, rg.From, rg.To), refresh)
}

func (b *Bot) showToday(r *req, sc *session.Scope, st documents.Stage, refresh bool) {
	b.showListView(r, sc, r.p.T(i18n.TodayTitle, st.Name()), refresh)
}

func (b *Bot) showListView(r *req, sc *session.Scope, title string, refresh bool) {
	st, area, items, all, err := b.currentItems(r, sc, refresh)
	if err != nil {
		// экран остаётся рабочим: пустой список с «обновить» и «назад»
		b.fail(r, err)
	}
	page, _ := dialog.GetInt(r.payload(), dialog.KeyPage)
	query, _ := dialog.GetString(r.payload(), dialog.KeyQuery)

	_, start, end := pageBounds(len(items), page)
	shown := make(map[int]documents.Ref, end-start)
	for i := start; i < end; i++ {
		shown[i] = refFor(area, items[i], st)
	}
	dialog.SetShown(r.payload(), shown)
	b.show(r, renderList(r.p, listView{area: area, title: title, all: all, items: items, page: page, query: query}))
}

func (b *Bot) onListCallback(r *req, data string) {
	sc := b.scope(r)
	if sc == nil {
		return
	}
	verb := cbArg(data, 1)
	switch verb {
	case "open":
		// документ берём из снимка показанной страницы: список на сервере мог измениться
		i, ok := cbInt(data, 2)
		ref, found := dialog.Shown(r.payload(), i)
		if !ok || !found || !onListScreen(r.stack().Current(), cbArg(data, 0), ref.Stage) {
			b.render(r)
			return
		}
		next := dialog.DocDetail{Ref: ref, Mode: documents.ModeEdit}
		if cbArg(data, 0) == "today" {
			next.Mode = documents.ModeView
		}
		dialog.SetDraft(r.payload(), nil)
		b.setDetail(r.chatID, nil)
		r.stack().Navigate(next)
		b.render(r)
	case "page":
		if n, ok := cbInt(data, 2); ok && n >= 0 {
			r.payload()[dialog.KeyPage] = float64(n)
		}
		b.render(r)
	case "search":
		setAwait(r.payload(), dialog.AwaitSearch)
		b.show(r, view{text: r.p.T(i18n.ListAskSearch), kb: cancelKeyboard(r.p)})
	case "range":
		setAwait(r.payload(), dialog.AwaitDateRange)
		b.show(r, view{text: r.p.T(i18n.ListAskRange), kb: cancelKeyboard(r.p)})
	case "export":
		st, area, items, _, err := b.currentItems(r, sc, false)
		if err != nil {
			b.fail(r, err)
			return
		}
		b.sendExport(r, st, area, items)
	case "refresh":
		switch s := r.stack().Current().(type) {
		case dialog.DocList:
			b.showList(r, sc, s.Stage, true)
		case dialog.DocsToday:
			b.showToday(r, sc, s.Stage, true)
		default:
			b.render(r)
		}
	default:
		b.render(r)
	}
}

func refFor(area string, m documents.Master, st documents.Stage) documents.Ref {
	if area == "today" {
		return documents.RefForRecorded(m, st)
	}
	return documents.RefForEntry(m, st)
}

// onListScreen — кнопка относится к списку, который сейчас открыт.
func onListScreen(cur dialog.Screen, area string, st documents.Stage) bool {
	switch s := cur.(type) {
	case dialog.DocList:
		return area == "list" && s.Stage == st
	case dialog.DocsToday:
		return area == "today" && s.Stage == st
	}
	return false
}

func (b *Bot) onSearch(r *req, text string) {
	setAwait(r.payload(), dialog.AwaitNone)
	delete(r.payload(), dialog.KeyPage)
	if text == "-" || text == "" {
		delete(r.payload(), dialog.KeyQuery)
	} else {
		r.payload()[dialog.KeyQuery] = text
	}
	r.mid = 0
	b.render(r)
}

func (b *Bot) onDateRange(r *req, text string) {
	from, to, err := parseRange(text, b.loc)
	if err != nil {
		b.notify(r.chatID, r.p.T(i18n.ListBadRange))
		return
	}
	setAwait(r.payload(), dialog.AwaitNone)
	delete(r.payload(), dialog.KeyPage)
	r.payload()[dialog.KeyFromDate] = from.Format(time.DateOnly)
	r.payload()[dialog.KeyToDate] = to.Format(time.DateOnly)
	r.mid = 0
	b.render(r)
}

// loadDetail берёт карточку из памяти или с сервера и накладывает черновик.
func (b *Bot) loadDetail(r *req, sc *session.Scope, s dialog.DocDetail) (*documents.Detail, error) {
	if d := b.detail(r.chatID); d != nil && d.Ref == s.Ref && d.Mode == s.Mode {
		return d, nil
	}
	d, err := b.docs.Detail(r.ctx, sc, s.Ref, s.Mode)
	if err != nil {
		return nil, err
	}
	if d.Editable {
		for i, q := range dialog.Draft(r.payload()) {
			_ = documents.SetEntered(d.Lines, i, q)
		}
	}
	b.setDetail(r.chatID, d)
	return d, nil
}

func (b *Bot) showDetail(r *req, sc *session.Scope, s dialog.DocDetail) {
	d, err := b.loadDetail(r, sc, s)
	if err != nil {
		b.fail(r, err)
		// назад к списку, чтобы не застрять на пустой карточке
		if r.stack().GoBack() {
			b.render(r)
		}
		return
	}
	b.show(r, renderDetail(r.p, d))
}

func (b *Bot) onDocCallback(r *req, data string) {
	sc := b.scope(r)
	if sc == nil {
		return
	}
	s, ok := r.stack().Current().(dialog.DocDetail)
	if !ok {
		b.render(r)
		return
	}
	d, err := b.loadDetail(r, sc, s)
	if err != nil {
		b.fail(r, err)
		return
	}

	switch cbArg(data, 1) {
	case "line":
		i, ok := cbInt(data, 2)
		if !d.Editable || !ok || i < 0 || i >= len(d.Lines) {
			b.render(r)
			return
		}
		l := d.Lines[i]
		r.payload()[dialog.KeyLineIdx] = float64(i)
		setAwait(r.payload(), dialog.AwaitQuantity)
		b.show(r, view{
			text: r.p.T(i18n.DetailAskQty, l.SizeNo, firstNonEmpty(l.ColorName, l.ColorNo), l.Remaining),
			kb:   cancelKeyboard(r.p),
		})
	case "clear":
		for i := range d.Lines {
			d.Lines[i].Entered = 0
		}
		dialog.SetDraft(r.payload(), nil)
		b.render(r)
	case "save":
		if !d.Editable {
			b.fail(r, documents.ErrReadOnly)
			return
		}
		// проверка до подтверждения: невалидное никогда не уходит на сервер
		if _, err := documents.Validate(d.Lines); err != nil {
			b.fail(r, err)
			b.render(r)
			return
		}
		if cbArg(data, 2) != "yes" {
			b.show(r, view{text: r.p.T(i18n.ConfirmSave, d.Total()), kb: confirmKeyboard(r.p, "doc:save:yes")})
			return
		}
		b.saveDocument(r, sc, d)
	default:
		b.render(r)
	}
}

func (b *Bot) onQuantity(r *req, text string) {
	s, ok := r.stack().Current().(dialog.DocDetail)
	d := b.detail(r.chatID)
	i, hasIdx := dialog.GetInt(r.payload(), dialog.KeyLineIdx)
	if !ok || d == nil || !hasIdx {
		setAwait(r.payload(), dialog.AwaitNone)
		b.render(r)
		return
	}
	qty, err := parseQty(text)
	if err != nil {
		b.notify(r.chatID, r.p.T(i18n.DetailBadQty))
		return
	}
	if err := documents.SetEntered(d.Lines, i, qty); err != nil {
		b.fail(r, err)
	} else {
		draft := dialog.Draft(r.payload())
		draft[i] = qty
		dialog.SetDraft(r.payload(), draft)
	}
	setAwait(r.payload(), dialog.AwaitNone)
	delete(r.payload(), dialog.KeyLineIdx)
	r.mid = 0
	sc := b.scope(r)
	if sc == nil {
		return
	}
	b.showDetail(r, sc, s)
}

func (b *Bot) saveDocument(r *req, sc *session.Scope, d *documents.Detail) {
	res, err := b.docs.Save(r.ctx, sc, d)
	if err != nil {
		var pe *documents.PartialSaveError
		if errors.As(err, &pe) {
			// шапка уже создана: повторное сохранение создало бы второй документ
			dialog.SetDraft(r.payload(), nil)
			b.setDetail(r.chatID, nil)
			r.stack().GoBack()
		}
		b.failSave(r, err)
		r.mid = 0
		b.render(r)
		return
	}
	b.notify(r.chatID, r.p.T(i18n.SaveOK, res.DocID, res.Total))
	dialog.SetDraft(r.payload(), nil)
	b.setDetail(r.chatID, nil)
	r.stack().GoBack()
	r.mid = 0
	b.render(r)
}

// failSave — как fail, но для частичного сохранения прикладывает «Gửi lại».
func (b *Bot) failSave(r *req, err error) {
	var pe *documents.PartialSaveError
	if !errors.As(err, &pe) || !pe.Retryable() {
		b.fail(r, err)
		return
	}
	r.log.Warn("partial save", "doc_id", pe.DocID, "journal_id", pe.JournalID, "err", pe.Err)
	r.payload()[dialog.KeyJournal] = pe.JournalID.String()
	msg := tgbotapi.NewMessage(r.chatID, errorText(r.p, err))
	msg.ReplyMarkup = markup(row(btn(r.p.T(i18n.BtnRetry), "pending:retry:"+pe.JournalID.String())))
	b.send(msg)
}
