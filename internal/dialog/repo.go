package dialog

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB — то, что нужно репозиторию от *pgxpool.Pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct {
	pool DB
}

func NewRepo(pool DB) *Repo { return &Repo{pool: pool} }

// Get возвращает состояние чата. Нет строки или она битая — чат на экране входа.
func (r *Repo) Get(ctx context.Context, chatID int64) (*Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT stack, payload FROM dialog_states WHERE chat_id = $1`, chatID)
	var stackRaw, payloadRaw []byte
	if err := row.Scan(&stackRaw, &payloadRaw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &Item{ChatID: chatID, Stack: NewStack(Login{}), Payload: Payload{}}, nil
		}
		return nil, err
	}
	it := &Item{ChatID: chatID, Stack: NewStack(Login{}), Payload: Payload{}}
	if len(stackRaw) > 0 {
		if err := json.Unmarshal(stackRaw, &it.Stack); err != nil {
			it.Stack = NewStack(Login{})
		}
	}
	if len(payloadRaw) > 0 {
		_ = json.Unmarshal(payloadRaw, &it.Payload)
	}
	if it.Payload == nil {
		it.Payload = Payload{}
	}
	return it, nil
}

func (r *Repo) Set(ctx context.Context, chatID int64, st Stack, payload Payload) error {
	stackRaw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if payload == nil {
		payload = Payload{}
	}
	payloadRaw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO dialog_states (chat_id, stack, payload, updated_at)
		VALUES ($1,$2,$3,now())
		ON CONFLICT (chat_id) DO UPDATE SET
		  stack=$2, payload=$3, updated_at=now()
	`, chatID, stackRaw, payloadRaw)
	return err
}

func (r *Repo) Reset(ctx context.Context, chatID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM dialog_states WHERE chat_id = $1`, chatID)
	return err
}
