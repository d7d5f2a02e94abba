// Package snapshot provides the session-scoped key-value store that
// remembers a visitor's contact profile across navigation.
package snapshot

import (
	"context"
	"time"
)

// DefaultTTL is how long a snapshot survives without being rewritten.
const DefaultTTL = 24 * time.Hour

// Store is a key-value surface scoped to a session. Get returns nil, nil
// when the key is absent or expired. Put overwrites (last writer wins).
type Store interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	Put(ctx context.Context, sessionID, key string, value []byte) error

	// DeleteExpired purges snapshots past their TTL and reports how many went.
	DeleteExpired(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
