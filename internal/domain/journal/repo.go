package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB — то, что нужно репозиторию от *pgxpool.Pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Repo struct {
	db DB
}

func NewRepo(db DB) *Repo { return &Repo{db: db} }

const selectCols = `id::text, chat_id, tenant_alias, username, stage, lot_no, order_no_712,
	updates, doc_id, status, error, created_at, updated_at`

// Begin записывает попытку сохранения до шага 1 и проставляет e.ID.
func (r *Repo) Begin(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	raw, err := json.Marshal(e.Updates)
	if err != nil {
		return err
	}
	e.Status = StatusPending
	_, err = r.db.Exec(ctx, `
		INSERT INTO save_journal (id, chat_id, tenant_alias, username, stage, lot_no, order_no_712, updates, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, e.ID.String(), e.ChatID, e.TenantAlias, e.Username, e.Stage, e.LotNo, e.OrderNo712, raw, string(e.Status))
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	return nil
}

func (r *Repo) MasterCreated(ctx context.Context, id uuid.UUID, docID string) error {
	return r.move(ctx, id, StatusMasterCreated, docID, "")
}

func (r *Repo) MasterFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.move(ctx, id, StatusMasterFailed, "", reason)
}

func (r *Repo) Completed(ctx context.Context, id uuid.UUID) error {
	return r.move(ctx, id, StatusCompleted, "", "")
}

func (r *Repo) DetailsFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.move(ctx, id, StatusDetailsFailed, "", reason)
}

// move меняет статус, только если текущий допускает переход.
// Пустой docID не затирает уже записанный номер документа.
func (r *Repo) move(ctx context.Context, id uuid.UUID, to Status, docID, reason string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE save_journal
		   SET status = $2,
		       doc_id = COALESCE(NULLIF($3, ''), doc_id),
		       error = $4,
		       updated_at = now()
		 WHERE id = $1 AND status = ANY($5)
	`, id.String(), string(to), docID, reason, allowedFrom(to))
	if err != nil {
		return fmt.Errorf("journal %s: %w", to, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("journal %s %s: %w", id, to, ErrInvalidTransition)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	row := r.db.QueryRow(ctx, `SELECT `+selectCols+` FROM save_journal WHERE id = $1`, id.String())
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// ListOpen — незавершённые сохранения чата, новые сверху.
func (r *Repo) ListOpen(ctx context.Context, chatID int64) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+selectCols+`
		  FROM save_journal
		 WHERE chat_id = $1 AND status IN ('master_created','details_failed') AND doc_id <> ''
		 ORDER BY created_at DESC
		 LIMIT 20
	`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var (
		e      Entry
		id     string
		status string
		raw    []byte
	)
	if err := row.Scan(&id, &e.ChatID, &e.TenantAlias, &e.Username, &e.Stage, &e.LotNo, &e.OrderNo712,
		&raw, &e.DocID, &status, &e.Error, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	e.ID = parsed
	e.Status = Status(status)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &e.Updates); err != nil {
			return nil, fmt.Errorf("journal updates: %w", err)
		}
	}
	return &e, nil
}
