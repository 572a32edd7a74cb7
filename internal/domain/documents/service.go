package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sewman/uwip-bot/internal/cache"
	"github.com/sewman/uwip-bot/internal/domain/journal"
	"github.com/sewman/uwip-bot/internal/domain/session"
	"github.com/sewman/uwip-bot/internal/infra/logger"
	"github.com/sewman/uwip-bot/internal/infra/metrics"
	"github.com/sewman/uwip-bot/internal/wipapi"
)

var (
	ErrReadOnly       = errors.New("document is opened read-only")
	ErrInvalidStage   = errors.New("invalid stage")
	ErrSaveInFlight   = errors.New("save already in progress")
	ErrNothingToRetry = errors.New("no pending details for this save")
)

// PartialSaveError — шапка создана (DocID), строки не записаны.
// Повторять можно только шаг 2 через RetryDetails(JournalID).
type PartialSaveError struct {
	DocID     string
	JournalID uuid.UUID
	Err       error
}

func (e *PartialSaveError) Error() string {
	return fmt.Sprintf("document %s created but details were not saved: %v", e.DocID, e.Err)
}

func (e *PartialSaveError) Unwrap() error { return e.Err }

func (e *PartialSaveError) Retryable() bool { return e.JournalID != uuid.Nil }

type API interface {
	DocList(ctx context.Context, ep wipapi.Endpoint, username string, stage int, from, to time.Time) ([]wipapi.DocMaster, error)
	DocsToday(ctx context.Context, ep wipapi.Endpoint, username string, stage int, on time.Time) ([]wipapi.DocMaster, error)
	DocDetail(ctx context.Context, ep wipapi.Endpoint, q wipapi.DetailQuery, on time.Time) (wipapi.DocMaster, []wipapi.DocDetail, error)
	InsertMaster(ctx context.Context, ep wipapi.Endpoint, in wipapi.MasterInput) (string, error)
	InsertDetail(ctx context.Context, ep wipapi.Endpoint, noDed, noOrd712 string, updates []wipapi.DetailUpdate) error
}

type Journal interface {
	Begin(ctx context.Context, e *journal.Entry) error
	MasterCreated(ctx context.Context, id uuid.UUID, docID string) error
	MasterFailed(ctx context.Context, id uuid.UUID, reason string) error
	Completed(ctx context.Context, id uuid.UUID) error
	DetailsFailed(ctx context.Context, id uuid.UUID, reason string) error
	Get(ctx context.Context, id uuid.UUID) (*journal.Entry, error)
	ListOpen(ctx context.Context, chatID int64) ([]journal.Entry, error)
}

type Invalidator interface {
	Invalidate(prefix string) int
}

type Options struct {
	API     API
	Lists   *cache.Store[[]Master]
	Today   *cache.Store[[]Master]
	Journal Journal
	// Invalidate сбрасывает кэши пользователя после успешного сохранения
	Invalidate Invalidator
	Metrics    *metrics.Metrics
	Log        *slog.Logger
	Now        func() time.Time
}

type Service struct {
	api        API
	lists      *cache.Store[[]Master]
	today      *cache.Store[[]Master]
	journal    Journal
	invalidate Invalidator
	metrics    *metrics.Metrics
	log        *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	inflight map[int64]struct{}
}

func NewService(o Options) *Service {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Log == nil {
		o.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		api:        o.API,
		lists:      o.Lists,
		today:      o.Today,
		journal:    o.Journal,
		invalidate: o.Invalidate,
		metrics:    o.Metrics,
		log:        o.Log,
		now:        o.Now,
		inflight:   map[int64]struct{}{},
	}
}

func (s *Service) Now() time.Time { return s.now() }

// guardRead: чтение документов требует только сессии и правильного этапа.
// Права влияют лишь на редактируемость карточки.
func (s *Service) guardRead(sc *session.Scope, stage Stage) error {
	if !sc.Authenticated() {
		return session.ErrNotAuthenticated
	}
	if !stage.Valid() {
		return ErrInvalidStage
	}
	return nil
}

// List — документы этапа. Нулевой период заменяется на «сегодня».
func (s *Service) List(ctx context.Context, sc *session.Scope, stage Stage, r DateRange, refresh bool) ([]Master, error) {
	if err := s.guardRead(sc, stage); err != nil {
		return nil, err
	}
	if r.From.IsZero() || r.To.IsZero() {
		r = Today(s.now())
	}
	if r.To.Before(r.From) {
		r.From, r.To = r.To, r.From
	}
	key := fmt.Sprintf("%slist|%d|%s|%s", sc.CacheKey(), stage, r.From.Format(time.DateOnly), r.To.Format(time.DateOnly))
	if !refresh && s.lists != nil {
		if v, ok := s.lists.Get(key); ok {
			return v, nil
		}
	}
	rows, err := s.api.DocList(ctx, sc.Endpoint(), sc.Username(), int(stage), r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("list stage %d: %w", stage, err)
	}
	out := mastersFromWire(rows)
	if s.lists != nil {
		s.lists.Put(key, out)
	}
	return out, nil
}

// Today — документы этапа, записанные сегодня.
func (s *Service) Today(ctx context.Context, sc *session.Scope, stage Stage, refresh bool) ([]Master, error) {
	if err := s.guardRead(sc, stage); err != nil {
		return nil, err
	}
	now := s.now()
	key := fmt.Sprintf("%stoday|%d|%s", sc.CacheKey(), stage, now.Format(time.DateOnly))
	if !refresh && s.today != nil {
		if v, ok := s.today.Get(key); ok {
			return v, nil
		}
	}
	rows, err := s.api.DocsToday(ctx, sc.Endpoint(), sc.Username(), int(stage), now)
	if err != nil {
		return nil, fmt.Errorf("today stage %d: %w", stage, err)
	}
	out := mastersFromWire(rows)
	if s.today != nil {
		s.today.Put(key, out)
	}
	return out, nil
}

// Detail загружает карточку. Editable = режим правки И право на правку;
// в режиме просмотра Entered заполняется уже переданным количеством.
func (s *Service) Detail(ctx context.Context, sc *session.Scope, ref Ref, mode Mode) (*Detail, error) {
	if err := s.guardRead(sc, ref.Stage); err != nil {
		return nil, err
	}
	m, rows, err := s.api.DocDetail(ctx, sc.Endpoint(), ref.query(), s.now())
	if err != nil {
		return nil, fmt.Errorf("detail lot %s: %w", ref.LotNo, err)
	}
	d := &Detail{
		Ref:      ref,
		Master:   masterFromWire(m),
		Lines:    make([]Line, 0, len(rows)),
		Mode:     mode,
		Editable: Editable(mode, sc.CanEdit()),
	}
	for _, r := range rows {
		l := lineFromWire(r)
		if !d.Editable {
			l.Entered = l.Transferred
		}
		d.Lines = append(d.Lines, l)
	}
	mergeRef(&d.Master, ref)
	return d, nil
}

// шапка getwipdocdetail бывает неполной — добиваем её из параметров открытия
func mergeRef(m *Master, ref Ref) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&m.LotNo, ref.LotNo)
	fill(&m.OrderNo, ref.OrderNo)
	fill(&m.OrderNo712, ref.OrderNo712)
	fill(&m.StyleNo, ref.StyleNo)
	fill(&m.FromDepNo, ref.FromDepNo)
	fill(&m.ToDepNo, ref.ToDepNo)
	fill(&m.ProductNo, ref.ProductNo)
	fill(&m.DocID, ref.ExistingID)
}

type SaveResult struct {
	DocID string
	Total int
}

func (s *Service) acquire(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[chatID]; busy {
		return false
	}
	s.inflight[chatID] = struct{}{}
	return true
}

func (s *Service) release(chatID int64) {
	s.mu.Lock()
	delete(s.inflight, chatID)
	s.mu.Unlock()
}

// Save — двухшаговое сохранение: шапка (шаг 1), затем строки (шаг 2).
// Шаг 1 не повторяется. Ошибка шага 2 возвращается как *PartialSaveError.
func (s *Service) Save(ctx context.Context, sc *session.Scope, d *Detail) (*SaveResult, error) {
	if !sc.Authenticated() {
		return nil, session.ErrNotAuthenticated
	}
	if d == nil || !d.Editable || !sc.CanEdit() {
		return nil, ErrReadOnly
	}
	updates, err := Validate(d.Lines)
	if err != nil {
		if errors.Is(err, ErrNothingToSave) {
			s.metrics.Save("empty")
		} else {
			s.metrics.Save("validation")
		}
		return nil, err
	}
	if !s.acquire(sc.ChatID) {
		return nil, ErrSaveInFlight
	}
	defer s.release(sc.ChatID)

	log := logger.Chat(s.log, sc.ChatID).With("lot", d.Ref.LotNo, "stage", int(d.Ref.Stage))
	entry := &journal.Entry{
		ChatID:      sc.ChatID,
		TenantAlias: sc.Tenant.DatabaseAlias,
		Username:    sc.Username(),
		Stage:       int(d.Ref.Stage),
		LotNo:       d.Ref.LotNo,
		OrderNo712:  d.Ref.OrderNo712,
		Updates:     updates,
	}
	s.begin(ctx, log, entry)

	docID, err := s.api.InsertMaster(ctx, sc.Endpoint(), wipapi.MasterInput{
		Username: sc.Username(),
		NoOrd:    d.Ref.OrderNo,
		NoOrd712: d.Ref.OrderNo712,
		NoLot:    d.Ref.LotNo,
		NoDep:    d.Ref.FromDepNo,
		NoDepTo:  d.Ref.ToDepNo,
		NoPrd:    d.Ref.ProductNo,
		Stage:    int(d.Ref.Stage),
	})
	if err != nil {
		log.Warn("insert master failed", "err", err)
		s.record(ctx, log, entry.ID, func(id uuid.UUID) error { return s.journal.MasterFailed(ctx, id, err.Error()) })
		s.metrics.Save("failed")
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.record(ctx, log, entry.ID, func(id uuid.UUID) error { return s.journal.MasterCreated(ctx, id, docID) })

	if err := s.api.InsertDetail(ctx, sc.Endpoint(), docID, d.Ref.OrderNo712, updates); err != nil {
		log.Error("insert details failed after master", "doc_id", docID, "err", err)
		s.record(ctx, log, entry.ID, func(id uuid.UUID) error { return s.journal.DetailsFailed(ctx, id, err.Error()) })
		s.metrics.Save("partial")
		return nil, &PartialSaveError{DocID: docID, JournalID: entry.ID, Err: err}
	}
	s.record(ctx, log, entry.ID, func(id uuid.UUID) error { return s.journal.Completed(ctx, id) })

	s.afterSave(sc)
	s.metrics.Save("ok")
	log.Info("document saved", "doc_id", docID)
	return &SaveResult{DocID: docID, Total: d.Total()}, nil
}

// RetryDetails повторяет только шаг 2 для записи журнала.
func (s *Service) RetryDetails(ctx context.Context, sc *session.Scope, journalID uuid.UUID) (*SaveResult, error) {
	if !sc.Authenticated() {
		return nil, session.ErrNotAuthenticated
	}
	if !sc.CanEdit() {
		return nil, ErrReadOnly
	}
	if s.journal == nil || journalID == uuid.Nil {
		return nil, ErrNothingToRetry
	}
	e, err := s.journal.Get(ctx, journalID)
	if err != nil {
		return nil, err
	}
	if e.ChatID != sc.ChatID || e.Username != sc.Username() || e.TenantAlias != sc.Tenant.DatabaseAlias || !e.Open() {
		return nil, ErrNothingToRetry
	}
	if !s.acquire(sc.ChatID) {
		return nil, ErrSaveInFlight
	}
	defer s.release(sc.ChatID)

	log := logger.Chat(s.log, sc.ChatID).With("doc_id", e.DocID, "journal_id", e.ID)
	if err := s.api.InsertDetail(ctx, sc.Endpoint(), e.DocID, e.OrderNo712, e.Updates); err != nil {
		log.Warn("retry details failed", "err", err)
		s.record(ctx, log, e.ID, func(id uuid.UUID) error { return s.journal.DetailsFailed(ctx, id, err.Error()) })
		s.metrics.Save("partial")
		return nil, &PartialSaveError{DocID: e.DocID, JournalID: e.ID, Err: err}
	}
	s.record(ctx, log, e.ID, func(id uuid.UUID) error { return s.journal.Completed(ctx, id) })

	s.afterSave(sc)
	s.metrics.Save("ok")
	total := 0
	for _, u := range e.Updates {
		total += u.Quantity
	}
	log.Info("details saved on retry")
	return &SaveResult{DocID: e.DocID, Total: total}, nil
}

// Pending — незавершённые сохранения пользователя в текущем тенанте.
func (s *Service) Pending(ctx context.Context, sc *session.Scope) ([]journal.Entry, error) {
	if !sc.Authenticated() {
		return nil, session.ErrNotAuthenticated
	}
	if s.journal == nil {
		return nil, nil
	}
	all, err := s.journal.ListOpen(ctx, sc.ChatID)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, e := range all {
		if e.Username == sc.Username() && e.TenantAlias == sc.Tenant.DatabaseAlias {
			out = append(out, e)
		}
	}
	return out, nil
}

// журнал вспомогательный: его сбой не ломает сохранение, только лишает повтора
func (s *Service) begin(ctx context.Context, log *slog.Logger, e *journal.Entry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Begin(ctx, e); err != nil {
		log.Warn("journal begin failed", "err", err)
		e.ID = uuid.Nil
	}
}

func (s *Service) record(ctx context.Context, log *slog.Logger, id uuid.UUID, fn func(uuid.UUID) error) {
	if s.journal == nil || id == uuid.Nil {
		return
	}
	if err := fn(id); err != nil {
		log.Warn("journal update failed", "journal_id", id, "err", err)
	}
}

func (s *Service) afterSave(sc *session.Scope) {
	if s.invalidate == nil {
		return
	}
	n := s.invalidate.Invalidate(sc.CacheKey())
	logger.Chat(s.log, sc.ChatID).Debug("caches invalidated", "entries", n)
}

func mastersFromWire(rows []wipapi.DocMaster) []Master {
	out := make([]Master, 0, len(rows))
	for _, r := range rows {
		out = append(out, masterFromWire(r))
	}
	return out
}
