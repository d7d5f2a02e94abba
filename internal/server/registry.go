package server

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/grass-estimator/internal/workflow"
)

type entry struct {
	machine  *workflow.Machine
	lastSeen time.Time
}

// registry holds one workflow machine per live session.
type registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	create  func(id string) *workflow.Machine
	now     func() time.Time
}

func newRegistry(create func(id string) *workflow.Machine) *registry {
	return &registry{
		entries: make(map[string]*entry),
		create:  create,
		now:     time.Now,
	}
}

// get returns the session's machine, creating it on first use.
func (r *registry) get(id string) *workflow.Machine {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		e = &entry{machine: r.create(id)}
		r.entries[id] = e
	}
	e.lastSeen = r.now()
	return e.machine
}

// remove tears the session down. It reports whether the session was live.
func (r *registry) remove(id string) bool {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if ok {
		e.machine.Session().Teardown()
	}
	return ok
}

func (r *registry) each(fn func(*workflow.Machine) bool) {
	r.mu.Lock()
	machines := make([]*workflow.Machine, 0, len(r.entries))
	for _, e := range r.entries {
		machines = append(machines, e.machine)
	}
	r.mu.Unlock()

	for _, m := range machines {
		if !fn(m) {
			return
		}
	}
}

// sweep tears down sessions idle longer than maxIdle. Sessions with a
// submission in flight are kept.
func (r *registry) sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var stale []*entry
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) && !e.machine.State().Status.Busy() {
			stale = append(stale, e)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, e := range stale {
		e.machine.Session().Teardown()
	}
	if len(stale) > 0 {
		zap.L().Info("server: swept idle sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
