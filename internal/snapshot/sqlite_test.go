package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_PutAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "sess-1", "contactProfile", []byte(`{"name":"Jo"}`)))

	data, err := st.Get(ctx, "sess-1", "contactProfile")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Jo"}`, string(data))
}

func TestSQLite_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	data, err := st.Get(context.Background(), "nobody", "contactProfile")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSQLite_LastWriterWins(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "sess-1", "k", []byte("first")))
	require.NoError(t, st.Put(ctx, "sess-1", "k", []byte("second")))

	data, err := st.Get(ctx, "sess-1", "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	var rows int
	require.NoError(t, st.db.QueryRow(`SELECT COUNT(*) FROM session_snapshots`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestSQLite_ExpiredIsAbsent(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	// Write with an already-expired TTL.
	st.ttl = -time.Hour
	require.NoError(t, st.Put(ctx, "sess-1", "k", []byte("old")))

	data, err := st.Get(ctx, "sess-1", "k")
	require.NoError(t, err)
	assert.Nil(t, data)

	n, err := st.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_DeleteExpiredKeepsLive(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "live", "k", []byte("v")))

	n, err := st.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	data, err := st.Get(ctx, "live", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(data))
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Migrate(context.Background()))
}
