package workflow

import (
	"github.com/google/uuid"

	"github.com/sells-group/grass-estimator/internal/pricing"
	"github.com/sells-group/grass-estimator/internal/profile"
	"github.com/sells-group/grass-estimator/internal/selection"
	"github.com/sells-group/grass-estimator/internal/snapshot"
)

// Session carries the per-visitor state that outlives a single attempt: the
// stored contact profile, the pricing rate and the live preview handles.
type Session struct {
	ID       string
	Profiles *profile.Store
	Pricing  *pricing.Cache
	Previews *selection.Previews
}

// NewSession starts a session. An empty id is replaced with a fresh UUID.
func NewSession(id string, snap snapshot.Store, loader pricing.Loader) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		ID:       id,
		Profiles: profile.NewStore(snap, id),
		Pricing:  pricing.NewCache(loader),
		Previews: selection.NewPreviews(),
	}
}

// Teardown revokes every preview and forgets the cached rate. The stored
// profile is left in place.
func (s *Session) Teardown() {
	s.Previews.RevokeAll()
	s.Pricing.Reset()
}
