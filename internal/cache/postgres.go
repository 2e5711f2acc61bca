package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// pgxPool is the subset of *pgxpool.Pool the store needs.
type pgxPool interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

const (
	createCacheTable = `
CREATE TABLE IF NOT EXISTS search_cache (
	key TEXT PRIMARY KEY,
	value JSONB NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
)`

	selectCacheEntry = `
SELECT value FROM search_cache
WHERE key = $1 AND expires_at > now()`

	upsertCacheEntry = `
INSERT INTO search_cache (key, value, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value,
    expires_at = EXCLUDED.expires_at`
)

// PostgresStore keeps entries in the search_cache table. Expired rows are
// ignored on read and overwritten on the next write.
type PostgresStore struct {
	pool pgxPool
	now  func() time.Time
}

// NewPostgresStore wires a pgx backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

// EnsureSchema creates the cache table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createCacheTable); err != nil {
		return eris.Wrap(err, "create search_cache table")
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, selectCacheEntry, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "select cache entry")
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := s.now().Add(ttl)
	if _, err := s.pool.Exec(ctx, upsertCacheEntry, key, value, expiresAt); err != nil {
		return eris.Wrap(err, "upsert cache entry")
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
