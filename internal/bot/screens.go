package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sewman/uwip-bot/internal/domain/dashboard"
	"github.com/sewman/uwip-bot/internal/domain/documents"
	"github.com/sewman/uwip-bot/internal/domain/journal"
	"github.com/sewman/uwip-bot/internal/domain/session"
	"github.com/sewman/uwip-bot/internal/domain/tenant"
	"github.com/sewman/uwip-bot/internal/i18n"
)

const pageSize = 8

func renderTenantAsk(p *i18n.Printer) view {
	return view{text: p.T(i18n.TenantAsk)}
}

func renderLogin(p *i18n.Printer, t *tenant.Config, remember bool) view {
	name := ""
	if t != nil {
		name = t.CustomerID + " · " + t.DatabaseAlias
	}
	rem := p.T(i18n.BtnRememberOff)
	if remember {
		rem = p.T(i18n.BtnRememberOn)
	}
	return view{
		text: p.T(i18n.LoginTitle, name),
		kb: markup(
			row(btn(p.T(i18n.BtnLogin), "login:start")),
			row(btn(rem, "login:remember")),
			row(btn(p.T(i18n.BtnChangeTenant), "tenant:change")),
		),
	}
}

func renderHome(p *i18n.Printer, h dashboard.HomeInfo) view {
	var sb strings.Builder
	sb.WriteString(p.T(i18n.HomeTitle, h.EmployeeName, h.DepartmentName))
	sb.WriteString("\n")
	for _, st := range documents.Stages {
		i := st.Index()
		sb.WriteString("\n")
		sb.WriteString(p.T(i18n.HomeStage, st.Name(), h.Counters.Remaining[i], h.Counters.Today[i]))
	}
	if h.Partial() {
		sb.WriteString("\n\n")
		sb.WriteString(p.T(i18n.HomeDegraded))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, st := range documents.Stages {
		rows = append(rows, row(
			btn(fmt.Sprintf("%s (%s)", st.Name(), p.Num(h.Counters.Remaining[st.Index()])), fmt.Sprintf("stage:list:%d", st)),
			btn(fmt.Sprintf("%s %s", p.T(i18n.BtnToday), p.Num(h.Counters.Today[st.Index()])), fmt.Sprintf("stage:today:%d", st)),
		))
	}
	rows = append(rows, row(btn(p.T(i18n.BtnMenu), "drawer:open")))
	return view{text: sb.String(), kb: markup(rows...)}
}

func renderDrawer(p *i18n.Printer, sc *session.Scope, pending int) view {
	s := sc.Session
	var sb strings.Builder
	sb.WriteString(p.T(i18n.DrawerTitle, s.EmployeeName, s.EmployeeNo, s.DepartmentName, sc.Tenant.CustomerID))
	if len(s.Rights) > 0 {
		sb.WriteString("\n")
		sb.WriteString(p.T(i18n.DrawerRights, strings.Join(s.Rights, ", ")))
	}
	pendingLabel := p.T(i18n.BtnPending)
	if pending > 0 {
		pendingLabel = fmt.Sprintf("%s (%d)", pendingLabel, pending)
	}
	return view{
		text: sb.String(),
		kb: markup(
			row(btn(p.T(i18n.BtnRefresh), "home:refresh")),
			row(btn(pendingLabel, "pending:list")),
			row(btn(p.T(i18n.BtnLogout), "logout")),
			row(btn(p.T(i18n.BtnChangeTenant), "tenant:change")),
			row(btn(p.T(i18n.BtnClose), "drawer:close")),
		),
	}
}

// listView — параметры экрана списка.
type listView struct {
	area  string // "list" или "today"
	title string
	all   int
	items []documents.Master
	page  int
	query string
}

func renderList(p *i18n.Printer, lv listView) view {
	var sb strings.Builder
	sb.WriteString(lv.title)
	if lv.query != "" {
		sb.WriteString("\n")
		sb.WriteString(p.T(i18n.ListFilter, lv.query, len(lv.items), lv.all))
	}

	page, start, end := pageBounds(len(lv.items), lv.page)
	pages := (len(lv.items) + pageSize - 1) / pageSize

	rows := [][]tgbotapi.InlineKeyboardButton{}
	if len(lv.items) == 0 {
		sb.WriteString("\n\n")
		sb.WriteString(p.T(i18n.ListEmpty))
	}
	for i := start; i < end; i++ {
		rows = append(rows, row(btn(docLabel(p, lv.items[i], lv.area == "today"), fmt.Sprintf("%s:open:%d", lv.area, i))))
	}
	if pages > 1 {
		sb.WriteString("\n")
		sb.WriteString(p.T(i18n.ListPage, page+1, pages))
		pr := []tgbotapi.InlineKeyboardButton{}
		if page > 0 {
			pr = append(pr, btn(p.T(i18n.BtnPrev), fmt.Sprintf("%s:page:%d", lv.area, page-1)))
		}
		if page < pages-1 {
			pr = append(pr, btn(p.T(i18n.BtnNext), fmt.Sprintf("%s:page:%d", lv.area, page+1)))
		}
		rows = append(rows, pr)
	}

	tools := []tgbotapi.InlineKeyboardButton{btn(p.T(i18n.BtnSearch), lv.area+":search")}
	if lv.area == "list" {
		tools = append(tools, btn(p.T(i18n.BtnRange), "list:range"))
	}
	tools = append(tools, btn(p.T(i18n.BtnExport), lv.area+":export"), btn(p.T(i18n.BtnRefresh), lv.area+":refresh"))
	rows = append(rows, tools, navRow(p, true, true))
	return view{text: sb.String(), kb: markup(rows...)}
}

// pageBounds ограничивает номер страницы и возвращает её диапазон [start, end).
func pageBounds(n, page int) (int, int, int) {
	pages := (n + pageSize - 1) / pageSize
	if page >= pages {
		page = pages - 1
	}
	if page < 0 {
		page = 0
	}
	start := page * pageSize
	end := start + pageSize
	if end > n {
		end = n
	}
	return page, start, end
}

func docLabel(p *i18n.Printer, m documents.Master, recorded bool) string {
	order := m.OrderNo712
	if order == "" {
		order = m.OrderNo
	}
	parts := []string{}
	if recorded && m.DocID != "" {
		parts = append(parts, m.DocID)
	}
	parts = append(parts, m.LotNo, order)
	if m.ProductName != "" {
		parts = append(parts, m.ProductName)
	}
	parts = append(parts, p.Num(m.Quantity))
	return strings.Join(parts, " · ")
}

func listTitle(p *i18n.Printer, st documents.Stage, from, to time.Time) string {
	return p.T(i18n.ListTitle, st.Name(), from.Format(uiDate), to.Format(uiDate))
}

func renderDetail(p *i18n.Printer, d *documents.Detail) view {
	m := d.Master
	var sb strings.Builder
	sb.WriteString(d.Ref.Stage.Name())
	if m.DocID != "" {
		sb.WriteString(" · " + m.DocID)
	}
	sb.WriteString("\n")
	sb.WriteString(p.T(i18n.DetailHeader, m.LotNo, firstNonEmpty(m.OrderNo712, m.OrderNo), m.StyleNo,
		firstNonEmpty(m.FromDepName, m.FromDepNo), firstNonEmpty(m.ToDepName, m.ToDepNo),
		firstNonEmpty(m.ProductName, m.ProductNo), m.Quantity))
	sb.WriteString("\n")

	if len(d.Lines) == 0 {
		sb.WriteString("\n")
		sb.WriteString(p.T(i18n.DetailNoLines))
	}
	for _, l := range d.Lines {
		sb.WriteString("\n")
		sb.WriteString(p.T(i18n.DetailLine, l.SizeNo, firstNonEmpty(l.ColorName, l.ColorNo), l.Remaining, l.Transferred, l.Entered))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	if d.Editable {
		sb.WriteString("\n\n")
		sb.WriteString(p.T(i18n.DetailTotal, d.Total()))
		for i, l := range d.Lines {
			label := fmt.Sprintf("%s / %s: %s/%s", l.SizeNo, firstNonEmpty(l.ColorName, l.ColorNo), p.Num(l.Entered), p.Num(l.Remaining))
			rows = append(rows, row(btn(label, fmt.Sprintf("doc:line:%d", i))))
		}
		if len(d.Lines) > 0 {
			rows = append(rows, row(btn(p.T(i18n.BtnSave), "doc:save"), btn(p.T(i18n.BtnClear), "doc:clear")))
		}
	} else {
		sb.WriteString("\n\n")
		sb.WriteString(p.T(i18n.DetailReadOnly))
	}
	rows = append(rows, navRow(p, true, true))
	return view{text: sb.String(), kb: markup(rows...)}
}

func renderPending(p *i18n.Printer, entries []journal.Entry) view {
	if len(entries) == 0 {
		return view{text: p.T(i18n.PendingEmpty), kb: markup(row(btn(p.T(i18n.BtnClose), "drawer:close")))}
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, e := range entries {
		total := 0
		for _, u := range e.Updates {
			total += u.Quantity
		}
		label := fmt.Sprintf("%s %s", p.T(i18n.BtnRetry), p.T(i18n.PendingLine, e.DocID, e.LotNo, total))
		rows = append(rows, row(btn(label, "pending:retry:"+e.ID.String())))
	}
	rows = append(rows, row(btn(p.T(i18n.BtnClose), "drawer:close")))
	return view{text: p.T(i18n.PendingTitle), kb: markup(rows...)}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
