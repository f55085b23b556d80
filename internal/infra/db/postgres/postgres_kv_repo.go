// File: internal/infra/db/postgres/postgres_kv_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"persona-chat/internal/domain/ports/repository"
	"persona-chat/internal/infra/metrics"
)

var _ repository.KVStore = (*KVRepo)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS kv_records (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// KVRepo stores records in a single upserted row per key.
type KVRepo struct {
	pool *pgxpool.Pool
}

// NewKVRepo creates the table if needed.
func NewKVRepo(ctx context.Context, pool *pgxpool.Pool) (*KVRepo, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("ensure kv schema: %w", err)
	}
	return &KVRepo{pool: pool}, nil
}

func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT value FROM kv_records WHERE key = $1;`
	var v string
	if err := r.pool.QueryRow(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select kv %s: %w", key, err)
	}
	return v, true, nil
}

func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO kv_records (key, value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET
  value = EXCLUDED.value,
  updated_at = EXCLUDED.updated_at;`
	var tag pgconn.CommandTag
	tag, err := r.pool.Exec(ctx, q, key, value)
	if err != nil {
		return fmt.Errorf("upsert kv %s: %w", key, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("upsert kv %s: %d rows affected", key, tag.RowsAffected())
	}
	r.reportPoolStats()
	return nil
}

func (r *KVRepo) reportPoolStats() {
	st := r.pool.Stat()
	metrics.SetStorePoolConns(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
}
