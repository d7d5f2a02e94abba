package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/grass-estimator/internal/snapshot"
)

type failingSnapshot struct {
	snapshot.Store
}

func (failingSnapshot) Get(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingSnapshot) Put(context.Context, string, string, []byte) error {
	return errors.New("disk on fire")
}

func TestStore_PersistAndLoad(t *testing.T) {
	ctx := context.Background()
	st := NewStore(snapshot.NewMemory(time.Hour), "sess-1")

	errs, err := st.Persist(ctx, validProfile())
	require.NoError(t, err)
	assert.True(t, errs.Valid())

	got, err := st.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, validProfile(), *got)
}

func TestStore_PersistInvalidDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	snap := snapshot.NewMemory(time.Hour)
	st := NewStore(snap, "sess-1")

	p := validProfile()
	_, err := st.Persist(ctx, p)
	require.NoError(t, err)

	bad := p
	bad.Phone = "12345"
	errs, err := st.Persist(ctx, bad)
	require.NoError(t, err)
	assert.Contains(t, errs, FieldPhone)

	// Prior snapshot is untouched.
	got, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0412345678", got.Phone)
}

func TestStore_LoadAbsent(t *testing.T) {
	st := NewStore(snapshot.NewMemory(time.Hour), "nobody")

	got, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_LoadMalformedIsAbsent(t *testing.T) {
	ctx := context.Background()
	snap := snapshot.NewMemory(time.Hour)
	require.NoError(t, snap.Put(ctx, "sess-1", SnapshotKey, []byte("{not json")))

	got, err := NewStore(snap, "sess-1").Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	snap := snapshot.NewMemory(time.Hour)

	_, err := NewStore(snap, "a").Persist(ctx, validProfile())
	require.NoError(t, err)

	got, err := NewStore(snap, "b").Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_BackendErrors(t *testing.T) {
	ctx := context.Background()
	st := NewStore(failingSnapshot{}, "sess-1")

	_, err := st.Persist(ctx, validProfile())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile: persist")

	_, err = st.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile: load")
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	st := NewStore(snapshot.NewMemory(time.Hour), "sess-1")

	_, err := st.Persist(ctx, validProfile())
	require.NoError(t, err)

	updated := validProfile()
	updated.Address = "1 New Rd, Carlton VIC 3053"
	_, err = st.Persist(ctx, updated)
	require.NoError(t, err)

	got, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated.Address, got.Address)
}

