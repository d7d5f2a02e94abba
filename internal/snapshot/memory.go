package snapshot

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

type memKey struct {
	session string
	key     string
}

// Memory is an in-process Store. Useful for tests and one-shot CLI runs.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[memKey]memEntry
}

// NewMemory creates an empty in-memory Store. A non-positive ttl selects DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[memKey]memEntry),
	}
}

func (m *Memory) Get(_ context.Context, sessionID, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[memKey{sessionID, key}]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (m *Memory) Put(_ context.Context, sessionID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.entries[memKey{sessionID, key}] = memEntry{value: v, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) DeleteExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Migrate(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
