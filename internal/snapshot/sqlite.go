package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string, ttl time.Duration) (*SQLiteStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS session_snapshots (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL,
	UNIQUE (session_id, key)
);

CREATE INDEX IF NOT EXISTS idx_session_snapshots_expires_at ON session_snapshots(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_snapshots WHERE session_id = ? AND key = ? AND expires_at > ?`,
		sessionID, key, s.now().Unix(),
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get snapshot %s/%s", sessionID, key)
	}
	return value, nil
}

func (s *SQLiteStore) Put(ctx context.Context, sessionID, key string, value []byte) error {
	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_snapshots (id, session_id, key, value, updated_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at, expires_at = excluded.expires_at`,
		uuid.New().String(), sessionID, key, value, now.Unix(), now.Add(s.ttl).Unix(),
	)
	return eris.Wrapf(err, "sqlite: put snapshot %s/%s", sessionID, key)
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM session_snapshots WHERE expires_at <= ?`,
		s.now().Unix(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired snapshots")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	return int(n), nil
}
