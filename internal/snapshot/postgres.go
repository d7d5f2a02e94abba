package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	ttl     time.Duration
	closeFn func()
}

// Pool sizing. Snapshot traffic is one small row per profile save or load.
const (
	maxPoolConns = 8
	minPoolConns = 1
)

// NewPostgres connects, pings and returns a PostgresStore. A zero ttl uses
// DefaultTTL.
func NewPostgres(ctx context.Context, connString string, ttl time.Duration) (*PostgresStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = maxPoolConns
	pgxCfg.MinConns = minPoolConns
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, ttl: ttl, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS session_snapshots (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	session_id TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL,
	UNIQUE (session_id, key)
);

CREATE INDEX IF NOT EXISTS idx_session_snapshots_expires_at ON session_snapshots(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM session_snapshots
		 WHERE session_id = $1 AND key = $2 AND expires_at > now()`,
		sessionID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get snapshot %s/%s", sessionID, key)
	}
	return value, nil
}

func (s *PostgresStore) Put(ctx context.Context, sessionID, key string, value []byte) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO session_snapshots (id, session_id, key, value, updated_at, expires_at) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (session_id, key) DO UPDATE SET value = $4, updated_at = $5, expires_at = $6`,
		uuid.New().String(), sessionID, key, value, now, now.Add(s.ttl),
	)
	return eris.Wrapf(err, "postgres: put snapshot %s/%s", sessionID, key)
}

func (s *PostgresStore) DeleteExpired(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM session_snapshots WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired snapshots")
	}
	return int(tag.RowsAffected()), nil
}
