// Package workflow drives one estimation attempt from photo selection to a
// priced result. Transitions are expressed as a pure reducer; Machine adds the
// side effects around it.
package workflow

import (
	"github.com/sells-group/grass-estimator/internal/model"
)

// Status is a workflow state.
type Status string

// Workflow states.
const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusSubmitting Status = "submitting"
	StatusScanning   Status = "scanning"
	StatusSuccess    Status = "success"
	StatusFailure    Status = "failure"
)

// User-facing messages.
const (
	MsgNoPhotos      = "Please upload at least one photo."
	MsgGenericFailed = "Something went wrong. Please try again."
)

// Busy reports whether a submission is between intent and outcome.
func (s Status) Busy() bool {
	return s == StatusValidating || s == StatusSubmitting || s == StatusScanning
}

// State is the full observable workflow state. At most one of Result and
// Error is set; Scanning is true iff a request is in flight.
type State struct {
	Status    Status                 `json:"status" yaml:"status"`
	Images    []model.Image          `json:"images" yaml:"images"`
	Previews  []string               `json:"previews" yaml:"previews"`
	Reference *model.ReferenceObject `json:"reference,omitempty" yaml:"reference,omitempty"`
	Result    *model.PricedEstimate  `json:"result,omitempty" yaml:"result,omitempty"`
	Error     string                 `json:"error,omitempty" yaml:"error,omitempty"`
	Scanning  bool                   `json:"scanning" yaml:"scanning"`
}

// Initial returns the zero form.
func Initial() State {
	return State{Status: StatusIdle}
}

func (s State) clone() State {
	out := s
	if s.Images != nil {
		out.Images = append([]model.Image(nil), s.Images...)
	}
	if s.Previews != nil {
		out.Previews = append([]string(nil), s.Previews...)
	}
	if s.Reference != nil {
		ref := *s.Reference
		out.Reference = &ref
	}
	if s.Result != nil {
		res := *s.Result
		out.Result = &res
	}
	return out
}
