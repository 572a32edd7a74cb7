package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/language"

	"github.com/sewman/uwip-bot/internal/app"
	"github.com/sewman/uwip-bot/internal/cache"
	"github.com/sewman/uwip-bot/internal/dialog"
	"github.com/sewman/uwip-bot/internal/domain/dashboard"
	"github.com/sewman/uwip-bot/internal/domain/documents"
	"github.com/sewman/uwip-bot/internal/domain/session"
	"github.com/sewman/uwip-bot/internal/domain/tenant"
	"github.com/sewman/uwip-bot/internal/i18n"
	"github.com/sewman/uwip-bot/internal/infra/kv"
	"github.com/sewman/uwip-bot/internal/wipapi"
)

// fakeTG запоминает всё, что бот отправил в Telegram.
type fakeTG struct {
	mu     sync.Mutex
	out    []tgbotapi.Chattable
	nextID int
}

func (f *fakeTG) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeTG) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTG) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeTG) lastID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextID
}

// screen — текст и кнопки последнего показанного экрана.
func (f *fakeTG) screen() (string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.out) - 1; i >= 0; i-- {
		switch m := f.out[i].(type) {
		case tgbotapi.MessageConfig:
			kb, _ := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
			return m.Text, callbacks(kb)
		case tgbotapi.EditMessageTextConfig:
			if m.ReplyMarkup == nil {
				return m.Text, nil
			}
			return m.Text, callbacks(*m.ReplyMarkup)
		}
	}
	return "", nil
}

func (f *fakeTG) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.out {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeTG) deleted(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.out {
		if d, ok := c.(tgbotapi.DeleteMessageConfig); ok && d.MessageID == id {
			return true
		}
	}
	return false
}

// memStates хранит состояние через JSON, как это делает postgres.
type memStates struct {
	mu    sync.Mutex
	items map[int64][]byte
}

type memItem struct {
	Stack   dialog.Stack   `json:"stack"`
	Payload dialog.Payload `json:"payload"`
}

func (m *memStates) Get(_ context.Context, chatID int64) (*dialog.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.items[chatID]
	if !ok {
		return &dialog.Item{ChatID: chatID, Stack: dialog.NewStack(dialog.Login{}), Payload: dialog.Payload{}}, nil
	}
	var it memItem
	if err := json.Unmarshal(raw, &it); err != nil {
		return nil, err
	}
	return &dialog.Item{ChatID: chatID, Stack: it.Stack, Payload: it.Payload}, nil
}

func (m *memStates) Set(_ context.Context, chatID int64, st dialog.Stack, p dialog.Payload) error {
	raw, err := json.Marshal(memItem{Stack: st, Payload: p})
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[chatID] = raw
	return nil
}

func (m *memStates) Reset(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, chatID)
	return nil
}

type wipServer struct {
	*httptest.Server
	mu          sync.Mutex
	masterCalls int
	docs        []map[string]any
}

func (s *wipServer) setDocs(docs ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = docs
}

func newWipServer(t *testing.T) *wipServer {
	t.Helper()
	s := &wipServer{docs: []map[string]any{
		{"NO_LOT": "L-77", "NO_ORD": "O-1", "NO_DEP_FROM": "D1", "NO_DEP_TO": "D2", "NO_PRD": "P1", "QTY": 40},
	}}
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, v any) { _ = json.NewEncoder(w).Encode(v) }
	mux.HandleFunc("/master", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"status": r.URL.Query().Get("customerID") == "ABC123", "list": []map[string]any{
			{"ID_ADI": "C-01", "SERVER_IP": s.URL, "DB_NAME": "SEWMAN_ABC", "DB_ALIAS": "abc"},
		}})
	})
	mux.HandleFunc("/abc/general/login", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		reply(w, map[string]any{"status": q.Get("name_usl") == "u1" && q.Get("password_usl") == wipapi.HashPassword("p1")})
	})
	mux.HandleFunc("/abc/general/getuserrights", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"status": true, "list": []map[string]any{{"NO_MUL": 719}}})
	})
	mux.HandleFunc("/abc/general/swip/getwipuserinfo", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"status": true, "list": []map[string]any{
			{"NO_EMP": "E01", "NAME_EMP": "Nguyễn Lan", "NAME_DEP": "Tổ giặt", "RIGHT_719": 1, "RIGHT_729": 1},
		}})
	})
	mux.HandleFunc("/abc/general/swip/getwiphomeinfo", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"status": true, "list": []map[string]any{{"QTY_REMAIN_01": 37}}})
	})
	mux.HandleFunc("/abc/general/swip/getwipdoclist", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		docs := s.docs
		s.mu.Unlock()
		reply(w, map[string]any{"status": true, "list": docs})
	})
	mux.HandleFunc("/abc/general/swip/getwipdoclisttoday", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"status": true, "list": []map[string]any{
			{"NO_DED": "D090", "NO_LOT": "L-70", "NO_ORD": "O-9", "QTY": 12},
		}})
	})
	mux.HandleFunc("/abc/general/swip/getwipdocdetail", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"status": true, "master": map[string]any{"NO_LOT": "L-77"}, "list": []map[string]any{
			{"NO_SIZ": "M", "NO_COL": "C1", "NAME_COL": "Xanh", "QTY_REMAIN": 10, "QTY_IN_OUT": 0},
		}})
	})
	mux.HandleFunc("/abc/general/swip/insertwipdocmaster", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.masterCalls++
		s.mu.Unlock()
		reply(w, map[string]any{"status": true, "err_msg": "D100"})
	})
	mux.HandleFunc("/abc/general/swip/insertwipdocdetail", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway", http.StatusBadGateway)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *wipServer) masters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.masterCalls
}

type harness struct {
	t      *testing.T
	bot    *Bot
	tg     *fakeTG
	states *memStates
	caches *cache.Group
	chat   *tgbotapi.Chat
	user   *tgbotapi.User
	msgID  int
}

func newHarness(t *testing.T, srv *wipServer) *harness {
	t.Helper()
	store, err := kv.Open("", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	client := wipapi.New(wipapi.Options{
		MasterURL:      srv.URL + "/master",
		AuthTimeout:    2 * time.Second,
		RequestTimeout: 2 * time.Second,
	})
	now := func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	group := &cache.Group{}
	home := cache.New[dashboard.HomeInfo](16, time.Minute)
	lists := cache.New[[]documents.Master](16, time.Minute)
	today := cache.New[[]documents.Master](16, time.Minute)
	group.Add(home)
	group.Add(lists)
	group.Add(today)
	a := app.New(app.Deps{
		Resolver:  tenant.NewResolver(client),
		Tenants:   tenant.NewStore(store),
		Sessions:  session.NewService(client, session.NewCredentialStore(store), nil, nil),
		Dashboard: dashboard.NewService(client, home, now, nil),
		Documents: documents.NewService(documents.Options{API: client, Lists: lists, Today: today, Invalidate: group, Now: now}),
		Caches:    group,
	})

	tg := &fakeTG{}
	states := &memStates{items: map[int64][]byte{}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &harness{
		t:      t,
		bot:    New(tg, log, states, a, language.Vietnamese, time.UTC),
		tg:     tg,
		states: states,
		caches: group,
		chat:   &tgbotapi.Chat{ID: 7},
		user:   &tgbotapi.User{ID: 7, LanguageCode: "vi"},
		msgID:  1000,
	}
}

func (h *harness) text(s string) int {
	h.msgID++
	m := &tgbotapi.Message{MessageID: h.msgID, Chat: h.chat, From: h.user, Text: s}
	if strings.HasPrefix(s, "/") {
		m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(s)}}
	}
	h.bot.handle(context.Background(), tgbotapi.Update{Message: m})
	return h.msgID
}

func (h *harness) press(data string) {
	cb := &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    h.user,
		Data:    data,
		Message: &tgbotapi.Message{MessageID: h.tg.lastID(), Chat: h.chat},
	}
	h.bot.handle(context.Background(), tgbotapi.Update{CallbackQuery: cb})
}

func (h *harness) expect(wantText string, wantButtons ...string) {
	h.t.Helper()
	text, cbs := h.tg.screen()
	if wantText != "" && !strings.Contains(text, wantText) {
		h.t.Fatalf("screen text = %q, want %q", text, wantText)
	}
	for _, b := range wantButtons {
		if !has(cbs, b) {
			h.t.Fatalf("screen %q lacks button %s (have %v)", text, b, cbs)
		}
	}
}

func (h *harness) sent(substr string) bool {
	for _, s := range h.tg.texts() {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func (h *harness) login() {
	h.t.Helper()
	h.text("/start")
	h.expect(vi.T(i18n.TenantAsk))
	h.text("ABC123")
	h.expect("C-01 · abc", "login:start", "tenant:change")
	h.press("login:start")
	h.expect(vi.T(i18n.LoginAskUser))
	h.text("u1")
	h.expect(vi.T(i18n.LoginAskPassword))
	pw := h.text("p1")
	if !h.tg.deleted(pw) {
		h.t.Fatal("password message must be deleted")
	}
	h.expect("Nguyễn Lan", "stage:list:1", "stage:today:1", "drawer:open")
}

func TestFlowLoginToPartialSave(t *testing.T) {
	srv := newWipServer(t)
	h := newHarness(t, srv)
	h.login()

	h.press("stage:list:1")
	h.expect("18/10/2026", "list:open:0", "nav:back")
	h.press("list:open:0")
	h.expect("M / Xanh", "doc:line:0", "doc:save")

	h.press("doc:line:0")
	h.text("11")
	h.expect("nhập 11", "doc:save")
	h.press("doc:save")
	if !h.sent("(11)") {
		t.Fatal("expected quantity-exceeded message")
	}
	if srv.masters() != 0 {
		t.Fatal("invalid save must not reach the server")
	}

	h.press("doc:line:0")
	h.text("10")
	h.press("doc:save")
	h.expect("", "doc:save:yes", "nav:stay")
	h.press("doc:save:yes")
	if srv.masters() != 1 {
		t.Fatalf("master calls = %d", srv.masters())
	}
	if !h.sent("D100") {
		t.Fatal("partial save must name the created ticket")
	}
	// после частичного сохранения — назад к списку, черновик очищен
	h.expect("", "list:open:0")
	it, err := h.states.Get(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if it.Stack.Current().Kind() != dialog.KindDocList || len(dialog.Draft(it.Payload)) != 0 {
		t.Fatalf("state after partial save = %v %v", it.Stack.Current(), it.Payload)
	}
}

func TestFlowBackAndDrawer(t *testing.T) {
	h := newHarness(t, newWipServer(t))
	h.login()

	h.press("drawer:open")
	h.expect("719", "logout", "drawer:close")
	// системный «назад» сначала закрывает меню
	h.text("/back")
	h.expect("Nguyễn Lan", "stage:list:1")
	// на корне «назад» ничего не ломает
	h.text("/back")
	h.expect("Nguyễn Lan", "stage:list:1")

	h.press("stage:today:1")
	h.expect("hôm nay", "today:open:0", "today:refresh")
	h.press("today:open:0")
	h.expect(vi.T(i18n.DetailReadOnly))
	h.press("nav:back")
	h.expect("", "today:open:0")
	h.press("nav:back")
	h.expect("Nguyễn Lan")
}

func TestFlowChangeCustomer(t *testing.T) {
	h := newHarness(t, newWipServer(t))
	h.login()

	h.press("tenant:change")
	h.expect("", "tenant:change:yes", "nav:stay")
	h.press("tenant:change:yes")
	h.expect(vi.T(i18n.TenantAsk))

	h.text("NOPE")
	if !h.sent("NOPE") {
		t.Fatal("unknown customer code must be reported")
	}
	h.expect(vi.T(i18n.TenantAsk))
}

func TestFlowOpenUsesShownRowAfterListChanged(t *testing.T) {
	srv := newWipServer(t)
	h := newHarness(t, srv)
	h.login()

	h.press("stage:list:1")
	h.expect("", "list:open:0")

	// кэш истёк, а на сервере сверху появилась новая партия
	srv.setDocs(
		map[string]any{"NO_LOT": "L-99", "NO_ORD": "O-9", "NO_DEP_FROM": "D1", "NO_PRD": "P9", "QTY": 5},
		map[string]any{"NO_LOT": "L-77", "NO_ORD": "O-1", "NO_DEP_FROM": "D1", "NO_DEP_TO": "D2", "NO_PRD": "P1", "QTY": 40},
	)
	h.caches.Invalidate("")

	h.press("list:open:0")
	it, err := h.states.Get(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	d, ok := it.Stack.Current().(dialog.DocDetail)
	if !ok {
		t.Fatalf("screen = %v", it.Stack.Current())
	}
	if d.Ref.LotNo != "L-77" || d.Ref.OrderNo != "O-1" || d.Mode != documents.ModeEdit {
		t.Fatalf("opened %+v, want the tapped L-77", d)
	}
}

func TestFlowOpenIgnoresButtonOfAnotherList(t *testing.T) {
	h := newHarness(t, newWipServer(t))
	h.login()

	h.press("stage:today:1")
	h.expect("", "today:open:0")
	// кнопка списка «list» при открытом «today» ничего не открывает
	h.press("list:open:0")
	it, err := h.states.Get(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if it.Stack.Current().Kind() != dialog.KindDocsToday {
		t.Fatalf("screen = %v", it.Stack.Current())
	}
}

func TestFlowLogsCarryChatID(t *testing.T) {
	h := newHarness(t, newWipServer(t))
	var buf bytes.Buffer
	h.bot.log = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h.press("nosuch:cb")

	out := buf.String()
	if !strings.Contains(out, "unknown callback") || !strings.Contains(out, "chat_id=7") {
		t.Fatalf("log = %q", out)
	}
}
