package workflow

import (
	"github.com/sells-group/grass-estimator/internal/model"
)

// EventKind names a workflow event.
type EventKind string

// Workflow events.
const (
	EventFilesSelected    EventKind = "files_selected"
	EventReferenceSet     EventKind = "reference_set"
	EventSubmitIntent     EventKind = "submit_intent"
	EventValidationFailed EventKind = "validation_failed"
	EventValidated        EventKind = "validated"
	EventRequestSent      EventKind = "request_sent"
	EventResponseOK       EventKind = "response_ok"
	EventResponseFailed   EventKind = "response_fail"
	EventReset            EventKind = "reset"
)

// Event is an input to Reduce. Only the fields relevant to Kind are read.
type Event struct {
	Kind      EventKind
	Images    []model.Image
	Previews  []string
	Reference *model.ReferenceObject
	Result    *model.PricedEstimate
	Message   string
}

// Reduce returns the state that follows s on e. Events that are not valid in
// the current state leave it unchanged.
func Reduce(s State, e Event) State {
	next := s.clone()

	switch e.Kind {
	case EventFilesSelected:
		if s.Status.Busy() {
			return s
		}
		next.Images = append([]model.Image(nil), e.Images...)
		next.Previews = append([]string(nil), e.Previews...)

	case EventReferenceSet:
		if s.Status.Busy() {
			return s
		}
		next.Reference = nil
		if e.Reference != nil {
			ref := *e.Reference
			next.Reference = &ref
		}

	case EventSubmitIntent:
		if s.Status.Busy() {
			return s
		}
		next.Status = StatusValidating
		next.Result = nil
		next.Error = ""
		next.Scanning = false

	case EventValidationFailed:
		if s.Status != StatusValidating {
			return s
		}
		next.Status = StatusIdle
		next.Error = e.Message

	case EventValidated:
		if s.Status != StatusValidating {
			return s
		}
		next.Status = StatusSubmitting
		next.Scanning = true

	case EventRequestSent:
		if s.Status != StatusSubmitting {
			return s
		}
		next.Status = StatusScanning

	case EventResponseOK:
		if s.Status != StatusSubmitting && s.Status != StatusScanning {
			return s
		}
		next.Status = StatusSuccess
		next.Scanning = false
		next.Error = ""
		next.Result = nil
		if e.Result != nil {
			res := *e.Result
			next.Result = &res
		}

	case EventResponseFailed:
		if s.Status != StatusSubmitting && s.Status != StatusScanning {
			return s
		}
		next.Status = StatusFailure
		next.Scanning = false
		next.Result = nil
		next.Error = MsgGenericFailed

	case EventReset:
		if s.Status.Busy() {
			return s
		}
		return Initial()

	default:
		return s
	}

	return next
}
