package workflow

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/grass-estimator/internal/estimator"
	"github.com/sells-group/grass-estimator/internal/model"
	"github.com/sells-group/grass-estimator/internal/notify"
	"github.com/sells-group/grass-estimator/internal/pricing"
	"github.com/sells-group/grass-estimator/internal/request"
	"github.com/sells-group/grass-estimator/internal/resultparse"
	"github.com/sells-group/grass-estimator/internal/selection"
)

// ErrBusy is returned when an operation arrives while a submission is in
// flight.
var ErrBusy = eris.New("workflow: submission in progress")

// Option configures a Machine.
type Option func(*Machine)

// WithParser replaces the numbered three-line parser.
func WithParser(p resultparse.Parser) Option {
	return func(m *Machine) {
		m.parser = p
	}
}

// WithBuilder replaces the default request builder.
func WithBuilder(b *request.Builder) Option {
	return func(m *Machine) {
		m.builder = b
	}
}

// WithNotifier emails the stored profile after each successful estimate.
func WithNotifier(n notify.Notifier) Option {
	return func(m *Machine) {
		m.notifier = n
	}
}

// WithObserver registers fn to receive every state the machine enters. fn
// runs under the machine's lock and must not call back into it.
func WithObserver(fn func(State)) Option {
	return func(m *Machine) {
		m.observer = fn
	}
}

// Machine owns one workflow instance for a session.
type Machine struct {
	session   *Session
	submitter estimator.Submitter
	builder   *request.Builder
	parser    resultparse.Parser
	notifier  notify.Notifier
	observer  func(State)

	mu    sync.Mutex
	state State
	busy  bool
}

// NewMachine creates an idle machine bound to session.
func NewMachine(session *Session, submitter estimator.Submitter, opts ...Option) *Machine {
	m := &Machine{
		session:   session,
		submitter: submitter,
		builder:   request.NewBuilder(""),
		parser:    resultparse.Numbered{},
		state:     Initial(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns the session the machine is bound to.
func (m *Machine) Session() *Session {
	return m.session
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// dispatch applies e. Callers hold mu.
func (m *Machine) dispatch(e Event) {
	m.state = Reduce(m.state, e)
	if m.observer != nil {
		m.observer(m.state.clone())
	}
}

// SelectFiles replaces the selection with the first three files and issues
// fresh preview handles, revoking the previous ones.
func (m *Machine) SelectFiles(files []model.Image) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.busy {
		return m.state.clone(), ErrBusy
	}
	m.selectFiles(files)
	return m.state.clone(), nil
}

// selectFiles swaps the selection and its previews. Callers hold mu.
func (m *Machine) selectFiles(files []model.Image) {
	images := selection.Select(files)
	m.session.Previews.Revoke(m.state.Previews...)
	previews := m.session.Previews.Create(images)
	m.dispatch(Event{Kind: EventFilesSelected, Images: images, Previews: previews})
}

// SetReference records the optional reference object as entered. Whether it
// is usable is decided when the request is built.
func (m *Machine) SetReference(ref *model.ReferenceObject) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.busy {
		return m.state.clone(), ErrBusy
	}
	m.dispatch(Event{Kind: EventReferenceSet, Reference: ref})
	return m.state.clone(), nil
}

// Reset returns to the initial form and revokes the selection's previews.
func (m *Machine) Reset() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.busy {
		return m.state.clone(), ErrBusy
	}
	m.session.Previews.Revoke(m.state.Previews...)
	m.dispatch(Event{Kind: EventReset})
	return m.state.clone(), nil
}

// Submit runs one estimation attempt to completion and returns the resulting
// state. Submission failures are reported in the state, not as an error; the
// only error is ErrBusy for an overlapping call.
func (m *Machine) Submit(ctx context.Context) (State, error) {
	m.mu.Lock()
	if m.busy {
		st := m.state.clone()
		m.mu.Unlock()
		return st, ErrBusy
	}
	return m.run(ctx)
}

// Estimate replaces the selection, records ref and submits, all as one
// reservation. Another caller cannot change the files or reference between
// selection and upload; it gets ErrBusy instead.
func (m *Machine) Estimate(ctx context.Context, files []model.Image, ref *model.ReferenceObject) (State, error) {
	m.mu.Lock()
	if m.busy {
		st := m.state.clone()
		m.mu.Unlock()
		return st, ErrBusy
	}
	m.selectFiles(files)
	m.dispatch(Event{Kind: EventReferenceSet, Reference: ref})
	return m.run(ctx)
}

// run performs one attempt from the submit intent onwards. It is entered with
// mu held and releases it.
func (m *Machine) run(ctx context.Context) (State, error) {
	m.dispatch(Event{Kind: EventSubmitIntent})
	if len(m.state.Images) == 0 {
		m.dispatch(Event{Kind: EventValidationFailed, Message: MsgNoPhotos})
		st := m.state.clone()
		m.mu.Unlock()
		return st, nil
	}

	m.dispatch(Event{Kind: EventValidated})
	m.busy = true
	snap := m.state.clone()
	m.mu.Unlock()

	log := zap.L().With(zap.String("session_id", m.session.ID))

	payload, err := m.builder.Build(snap.Images, snap.Reference)
	if err != nil {
		log.Error("workflow: build request", zap.Error(err))
		return m.finish(Event{Kind: EventResponseFailed}), nil
	}

	m.mu.Lock()
	m.dispatch(Event{Kind: EventRequestSent})
	m.mu.Unlock()

	log.Info("workflow: submitting",
		zap.Int("images", len(payload.Images)),
		zap.Bool("reference", payload.Reference != nil),
		zap.Int("bytes", len(payload.Body)),
	)

	raw, err := m.submitter.Submit(ctx, payload)
	if err != nil {
		log.Warn("workflow: submission failed", zap.Error(err))
		return m.finish(Event{Kind: EventResponseFailed}), nil
	}

	parsed := m.parser.Parse(raw)
	priced := pricing.Apply(parsed, m.session.Pricing.Rate(ctx))

	if m.notifier != nil {
		if err := m.notifyProfile(ctx, priced); err != nil {
			log.Warn("workflow: notification failed", zap.Error(err))
			return m.finish(Event{Kind: EventResponseFailed}), nil
		}
	}

	log.Info("workflow: estimate ready",
		zap.String("area", priced.AreaLabel),
		zap.Bool("priced", priced.Price != nil),
	)
	return m.finish(Event{Kind: EventResponseOK, Result: &priced}), nil
}

func (m *Machine) notifyProfile(ctx context.Context, est model.PricedEstimate) error {
	p, err := m.session.Profiles.Load(ctx)
	if err != nil {
		return err
	}
	if p == nil {
		zap.L().Warn("workflow: no stored profile, skipping notification", zap.String("session_id", m.session.ID))
		return nil
	}
	return m.notifier.Notify(ctx, *p, est)
}

func (m *Machine) finish(e Event) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatch(e)
	m.busy = false
	return m.state.clone()
}
