package profile

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/grass-estimator/internal/model"
	"github.com/sells-group/grass-estimator/internal/snapshot"
)

// SnapshotKey is the key the profile lives under in the session snapshot.
const SnapshotKey = "contactProfile"

// Store round-trips one session's ContactProfile through a snapshot.Store.
type Store struct {
	snap      snapshot.Store
	sessionID string
}

// NewStore binds a profile store to a session.
func NewStore(snap snapshot.Store, sessionID string) *Store {
	return &Store{snap: snap, sessionID: sessionID}
}

// Persist validates p and, only when valid, overwrites the session snapshot.
// Invalid input is reported through FieldErrors, never through error; error
// is reserved for the snapshot backend failing.
func (s *Store) Persist(ctx context.Context, p model.ContactProfile) (FieldErrors, error) {
	if errs := Validate(p); !errs.Valid() {
		return errs, nil
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "profile: marshal")
	}
	if err := s.snap.Put(ctx, s.sessionID, SnapshotKey, data); err != nil {
		return nil, eris.Wrap(err, "profile: persist")
	}
	return FieldErrors{}, nil
}

// Load reads the session's profile. A missing or unreadable snapshot yields
// nil without error.
func (s *Store) Load(ctx context.Context) (*model.ContactProfile, error) {
	data, err := s.snap.Get(ctx, s.sessionID, SnapshotKey)
	if err != nil {
		return nil, eris.Wrap(err, "profile: load")
	}
	if data == nil {
		return nil, nil
	}

	var p model.ContactProfile
	if err := json.Unmarshal(data, &p); err != nil {
		zap.L().Warn("discarding malformed profile snapshot",
			zap.String("session", s.sessionID),
			zap.Error(err),
		)
		return nil, nil
	}
	return &p, nil
}
