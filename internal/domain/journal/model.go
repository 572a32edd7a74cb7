package journal

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sewman/uwip-bot/internal/wipapi"
)

// Status — фаза двухшагового сохранения документа.
type Status string

const (
	StatusPending       Status = "pending"        // перед шагом 1
	StatusMasterFailed  Status = "master_failed"  // шаг 1 не прошёл, документа нет
	StatusMasterCreated Status = "master_created" // шапка создана, строк ещё нет
	StatusCompleted     Status = "completed"
	StatusDetailsFailed Status = "details_failed" // шапка есть, строки не записаны
)

var (
	ErrNotFound          = errors.New("journal entry not found")
	ErrInvalidTransition = errors.New("journal entry is not in a state that allows this step")
)

// transitions — откуда можно прийти в каждый статус.
var transitions = map[Status][]Status{
	StatusMasterFailed:  {StatusPending},
	StatusMasterCreated: {StatusPending},
	StatusCompleted:     {StatusMasterCreated, StatusDetailsFailed},
	StatusDetailsFailed: {StatusMasterCreated, StatusDetailsFailed},
}

func allowedFrom(to Status) []string {
	from := transitions[to]
	out := make([]string, 0, len(from))
	for _, s := range from {
		out = append(out, string(s))
	}
	return out
}

// CanTransition сообщает, допустим ли переход from → to.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

type Entry struct {
	ID          uuid.UUID
	ChatID      int64
	TenantAlias string
	Username    string
	Stage       int
	LotNo       string
	OrderNo712  string
	Updates     []wipapi.DetailUpdate
	DocID       string
	Status      Status
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Open — шапка на сервере есть, а строки не дошли: запись ждёт повтора шага 2.
func (e Entry) Open() bool {
	return e.DocID != "" && (e.Status == StatusMasterCreated || e.Status == StatusDetailsFailed)
}
