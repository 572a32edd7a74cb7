package documents

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sewman/uwip-bot/internal/cache"
	"github.com/sewman/uwip-bot/internal/domain/journal"
	"github.com/sewman/uwip-bot/internal/domain/session"
	"github.com/sewman/uwip-bot/internal/domain/tenant"
	"github.com/sewman/uwip-bot/internal/wipapi"
)

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

type fakeAPI struct {
	mu          sync.Mutex
	listFrom    time.Time
	listTo      time.Time
	listCalls   int
	masterCalls int
	detailCalls int
	masterID    string
	masterErr   error
	detailErr   error
	updates     []wipapi.DetailUpdate
	block       chan struct{}
}

func (f *fakeAPI) DocList(_ context.Context, _ wipapi.Endpoint, _ string, _ int, from, to time.Time) ([]wipapi.DocMaster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.listFrom, f.listTo = from, to
	return []wipapi.DocMaster{{NoLot: "L1", NoOrd: "O1", NoSty: "ST-9", NamePrd: "Quần jean"}, {NoLot: "L2", NoOrd: "O2"}}, nil
}

func (f *fakeAPI) DocsToday(context.Context, wipapi.Endpoint, string, int, time.Time) ([]wipapi.DocMaster, error) {
	return []wipapi.DocMaster{{NoLot: "L1", NoDed: "D055"}}, nil
}

func (f *fakeAPI) DocDetail(_ context.Context, _ wipapi.Endpoint, q wipapi.DetailQuery, _ time.Time) (wipapi.DocMaster, []wipapi.DocDetail, error) {
	return wipapi.DocMaster{NamePrd: "Quần jean"}, []wipapi.DocDetail{
		{NoSiz: "M", NoCol: "C1", NameCol: "Xanh", QtyRemain: 10, QtyInOut: 3},
		{NoSiz: "L", NoCol: "C2", NameCol: "Đen", QtyRemain: 5, QtyInOut: 0},
	}, nil
}

func (f *fakeAPI) InsertMaster(context.Context, wipapi.Endpoint, wipapi.MasterInput) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.masterCalls++
	return f.masterID, f.masterErr
}

func (f *fakeAPI) InsertDetail(_ context.Context, _ wipapi.Endpoint, _ string, _ string, updates []wipapi.DetailUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	f.updates = updates
	return f.detailErr
}

type memJournal struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*journal.Entry
}

func newMemJournal() *memJournal { return &memJournal{entries: map[uuid.UUID]*journal.Entry{}} }

func (j *memJournal) Begin(_ context.Context, e *journal.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	e.ID = uuid.New()
	e.Status = journal.StatusPending
	cp := *e
	j.entries[e.ID] = &cp
	return nil
}

func (j *memJournal) move(id uuid.UUID, to journal.Status, docID, reason string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	e, ok := j.entries[id]
	if !ok {
		return journal.ErrNotFound
	}
	if !journal.CanTransition(e.Status, to) {
		return journal.ErrInvalidTransition
	}
	e.Status = to
	if docID != "" {
		e.DocID = docID
	}
	e.Error = reason
	return nil
}

func (j *memJournal) MasterCreated(_ context.Context, id uuid.UUID, docID string) error {
	return j.move(id, journal.StatusMasterCreated, docID, "")
}
func (j *memJournal) MasterFailed(_ context.Context, id uuid.UUID, reason string) error {
	return j.move(id, journal.StatusMasterFailed, "", reason)
}
func (j *memJournal) Completed(_ context.Context, id uuid.UUID) error {
	return j.move(id, journal.StatusCompleted, "", "")
}
func (j *memJournal) DetailsFailed(_ context.Context, id uuid.UUID, reason string) error {
	return j.move(id, journal.StatusDetailsFailed, "", reason)
}

func (j *memJournal) Get(_ context.Context, id uuid.UUID) (*journal.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	e, ok := j.entries[id]
	if !ok {
		return nil, journal.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (j *memJournal) ListOpen(_ context.Context, chatID int64) ([]journal.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []journal.Entry
	for _, e := range j.entries {
		if e.ChatID == chatID && e.Open() {
			out = append(out, *e)
		}
	}
	return out, nil
}

func scope(view, edit bool) *session.Scope {
	return &session.Scope{
		ChatID: 7,
		Tenant: &tenant.Config{ServerURL: "http://md1", DatabaseAlias: "abc"},
		Session: &session.Session{
			Username:      "u1",
			Authenticated: true,
			Permissions:   session.Permissions{View: view, Edit: edit},
		},
	}
}

func newService(api *fakeAPI, j Journal, inv Invalidator) *Service {
	return NewService(Options{
		API:        api,
		Lists:      cache.New[[]Master](16, time.Minute),
		Today:      cache.New[[]Master](16, time.Minute),
		Journal:    j,
		Invalidate: inv,
		Now:        func() time.Time { return fixedNow },
	})
}

func editableDetail() *Detail {
	return &Detail{
		Ref:      Ref{LotNo: "L1", OrderNo712: "712", Stage: StageToWash},
		Mode:     ModeEdit,
		Editable: true,
		Lines: []Line{
			{SizeNo: "M", ColorNo: "C1", Remaining: 10},
			{SizeNo: "L", ColorNo: "C2", Remaining: 5},
		},
	}
}

func TestValidateQuantityBoundary(t *testing.T) {
	tests := []struct {
		name      string
		entered   int
		remaining int
		wantErr   bool
	}{
		{"below", 4, 5, false},
		{"equal passes", 5, 5, false},
		{"one over fails", 6, 5, true},
		{"zero remaining over", 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate([]Line{{ColorNo: "C", Entered: tt.entered, Remaining: tt.remaining}})
			var qe *QuantityError
			if got := errors.As(err, &qe); got != tt.wantErr {
				t.Fatalf("entered %d remaining %d: err = %v", tt.entered, tt.remaining, err)
			}
		})
	}
}

func TestValidateCoversAllLines(t *testing.T) {
	updates, err := Validate([]Line{{ColorNo: "C1", Entered: 2, Remaining: 3}, {ColorNo: "C2", Remaining: 3}})
	if err != nil {
		t.Fatal(err)
	}
	if len(updates) != 2 || updates[0] != (wipapi.DetailUpdate{NoCol: "C1", Quantity: 2}) || updates[1].Quantity != 0 {
		t.Fatalf("updates = %+v", updates)
	}
}

func TestSetEntered(t *testing.T) {
	lines := []Line{{Remaining: 3}}
	if err := SetEntered(lines, 0, -1); !errors.Is(err, ErrNegativeQuantity) {
		t.Fatalf("negative: %v", err)
	}
	if err := SetEntered(lines, 1, 1); !errors.Is(err, ErrLineOutOfRange) {
		t.Fatalf("range: %v", err)
	}
	// больше остатка можно ввести, отклонит сохранение
	if err := SetEntered(lines, 0, 9); err != nil || lines[0].Entered != 9 {
		t.Fatalf("set: %v %+v", err, lines)
	}
}

func TestSaveWithoutPositiveQuantityNeverCallsServer(t *testing.T) {
	api := &fakeAPI{masterID: "D1"}
	s := newService(api, nil, nil)
	d := editableDetail()
	if _, err := s.Save(context.Background(), scope(true, true), d); !errors.Is(err, ErrNothingToSave) {
		t.Fatalf("expected ErrNothingToSave, got %v", err)
	}
	d.Lines[0].Entered = 11
	if _, err := s.Save(context.Background(), scope(true, true), d); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if api.masterCalls != 0 || api.detailCalls != 0 {
		t.Fatalf("server called: master=%d detail=%d", api.masterCalls, api.detailCalls)
	}
}

func TestDetailEditabilityMatrix(t *testing.T) {
	tests := []struct {
		mode    Mode
		canEdit bool
		want    bool
	}{
		{ModeEdit, true, true},
		{ModeEdit, false, false},
		{ModeView, true, false},
		{ModeView, false, false},
	}
	for _, tt := range tests {
		if got := Editable(tt.mode, tt.canEdit); got != tt.want {
			t.Errorf("Editable(%s, %v) = %v", tt.mode, tt.canEdit, got)
		}
		s := newService(&fakeAPI{}, nil, nil)
		d, err := s.Detail(context.Background(), scope(true, tt.canEdit), Ref{LotNo: "L1", Stage: StageToWash}, tt.mode)
		if err != nil {
			t.Fatal(err)
		}
		if d.Editable != tt.want {
			t.Errorf("detail(%s, %v).Editable = %v", tt.mode, tt.canEdit, d.Editable)
		}
		if !tt.want && d.Lines[0].Entered != 3 {
			t.Errorf("read-only line must show transferred quantity, got %d", d.Lines[0].Entered)
		}
		if tt.want && d.Lines[0].Entered != 0 {
			t.Errorf("editable line starts empty, got %d", d.Lines[0].Entered)
		}
	}
}

func TestSaveReadOnlyRejected(t *testing.T) {
	s := newService(&fakeAPI{}, nil, nil)
	d := editableDetail()
	d.Lines[0].Entered = 1
	if _, err := s.Save(context.Background(), scope(true, false), d); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

func TestSaveSuccessInvalidatesCaches(t *testing.T) {
	api := &fakeAPI{masterID: "D200"}
	var group cache.Group
	lists := cache.New[[]Master](16, time.Minute)
	group.Add(lists)
	s := NewService(Options{API: api, Lists: lists, Journal: newMemJournal(), Invalidate: &group, Now: func() time.Time { return fixedNow }})
	sc := scope(true, true)

	if _, err := s.List(context.Background(), sc, StageToWash, DateRange{}, false); err != nil {
		t.Fatal(err)
	}
	d := editableDetail()
	d.Lines[0].Entered = 10
	res, err := s.Save(context.Background(), sc, d)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.DocID != "D200" || res.Total != 10 {
		t.Fatalf("result = %+v", res)
	}
	if len(api.updates) != 2 || api.updates[0].Quantity != 10 {
		t.Fatalf("updates = %+v", api.updates)
	}
	if _, err := s.List(context.Background(), sc, StageToWash, DateRange{}, false); err != nil {
		t.Fatal(err)
	}
	if api.listCalls != 2 {
		t.Fatalf("list must be refetched after save, calls = %d", api.listCalls)
	}
}

func TestSavePartialFailureD100(t *testing.T) {
	api := &fakeAPI{masterID: "D100", detailErr: &wipapi.RequestError{Endpoint: "insertwipdocdetail", Timeout: true}}
	j := newMemJournal()
	s := newService(api, j, nil)
	sc := scope(true, true)
	d := editableDetail()
	d.Lines[1].Entered = 5

	_, err := s.Save(context.Background(), sc, d)
	var pe *PartialSaveError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PartialSaveError, got %v", err)
	}
	if pe.DocID != "D100" || !pe.Retryable() || !wipapi.IsNetwork(err) {
		t.Fatalf("partial error = %+v", pe)
	}
	e, _ := j.Get(context.Background(), pe.JournalID)
	if e.Status != journal.StatusDetailsFailed || e.DocID != "D100" {
		t.Fatalf("journal entry = %+v", e)
	}
	pending, err := s.Pending(context.Background(), sc)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %v, %v", pending, err)
	}

	// повтор: только шаг 2
	api.detailErr = nil
	res, err := s.RetryDetails(context.Background(), sc, pe.JournalID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.DocID != "D100" || res.Total != 5 {
		t.Fatalf("retry result = %+v", res)
	}
	if api.masterCalls != 1 || api.detailCalls != 2 {
		t.Fatalf("master=%d detail=%d", api.masterCalls, api.detailCalls)
	}
	if _, err := s.RetryDetails(context.Background(), sc, pe.JournalID); !errors.Is(err, ErrNothingToRetry) {
		t.Fatalf("second retry: %v", err)
	}
}

func TestSaveMasterFailureIsNotPartial(t *testing.T) {
	api := &fakeAPI{masterErr: wipapi.ErrNoDocumentID}
	s := newService(api, newMemJournal(), nil)
	d := editableDetail()
	d.Lines[0].Entered = 1
	_, err := s.Save(context.Background(), scope(true, true), d)
	var pe *PartialSaveError
	if errors.As(err, &pe) || !errors.Is(err, wipapi.ErrNoDocumentID) {
		t.Fatalf("unexpected %v", err)
	}
	if api.detailCalls != 0 {
		t.Fatal("details must not be sent without a document id")
	}
}

func TestSaveInFlightGuard(t *testing.T) {
	api := &fakeAPI{masterID: "D1", block: make(chan struct{})}
	s := newService(api, nil, nil)
	sc := scope(true, true)
	d := editableDetail()
	d.Lines[0].Entered = 1

	done := make(chan error, 1)
	go func() {
		_, err := s.Save(context.Background(), sc, d)
		done <- err
	}()
	for {
		s.mu.Lock()
		_, busy := s.inflight[sc.ChatID]
		s.mu.Unlock()
		if busy {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := s.Save(context.Background(), sc, d); !errors.Is(err, ErrSaveInFlight) {
		t.Fatalf("expected ErrSaveInFlight, got %v", err)
	}
	close(api.block)
	if err := <-done; err != nil {
		t.Fatalf("first save: %v", err)
	}
}

func TestListDefaultsToToday(t *testing.T) {
	api := &fakeAPI{}
	s := newService(api, nil, nil)
	if _, err := s.List(context.Background(), scope(true, false), StageToWash, DateRange{}, false); err != nil {
		t.Fatal(err)
	}
	if !api.listFrom.Equal(fixedNow) || !api.listTo.Equal(fixedNow) {
		t.Fatalf("range = %v..%v", api.listFrom, api.listTo)
	}
}

func TestListGuards(t *testing.T) {
	s := newService(&fakeAPI{}, nil, nil)
	// без права просмотра список всё равно доступен: права решают только редактирование
	if list, err := s.List(context.Background(), scope(false, false), StageToWash, DateRange{}, false); err != nil || len(list) == 0 {
		t.Fatalf("list without view right = %v, %v", list, err)
	}
	if _, err := s.List(context.Background(), &session.Scope{ChatID: 1}, StageToWash, DateRange{}, false); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("no session: %v", err)
	}
	if _, err := s.List(context.Background(), scope(true, false), Stage(5), DateRange{}, false); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("stage: %v", err)
	}
}

func TestTodayRefs(t *testing.T) {
	s := newService(&fakeAPI{}, nil, nil)
	list, err := s.Today(context.Background(), scope(true, true), StageFromWash, false)
	if err != nil || len(list) != 1 {
		t.Fatalf("today = %v, %v", list, err)
	}
	ref := RefForRecorded(list[0], StageFromWash)
	if ref.ExistingID != "D055" || ref.Stage != StageFromWash {
		t.Fatalf("ref = %+v", ref)
	}
	if RefForEntry(list[0], StageFromWash).ExistingID != "" {
		t.Fatal("entry ref must not carry document id")
	}
}

func TestFilter(t *testing.T) {
	list := mastersFromWire([]wipapi.DocMaster{
		{NoLot: "L1", NoSty: "ST-9", NamePrd: "Quần Jean"},
		{NoLot: "L2", NoOrd: "O2"},
	})
	if got := Filter(list, "jean"); len(got) != 1 || got[0].LotNo != "L1" {
		t.Fatalf("filter jean = %+v", got)
	}
	if got := Filter(list, "  "); len(got) != 2 {
		t.Fatalf("empty query must keep list, got %d", len(got))
	}
	if got := Filter(list, "zzz"); len(got) != 0 {
		t.Fatalf("no match, got %d", len(got))
	}
}

func TestParseStage(t *testing.T) {
	if s, err := ParseStage("3"); err != nil || s != StageIronIntake || s.Name() != "Ghi nhận Là" {
		t.Fatalf("parse 3 = %v %v", s, err)
	}
	for _, bad := range []string{"0", "5", "x"} {
		if _, err := ParseStage(bad); err == nil {
			t.Fatalf("ParseStage(%q) must fail", bad)
		}
	}
}
