// Package estimator sends a prepared submission to an analysis backend and
// returns its raw text result.
package estimator

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/grass-estimator/internal/config"
	"github.com/sells-group/grass-estimator/internal/request"
	"github.com/sells-group/grass-estimator/pkg/anthropic"
	"github.com/sells-group/grass-estimator/pkg/grassapi"
)

// ErrSubmissionFailed wraps every transport, status and decode failure.
var ErrSubmissionFailed = eris.New("estimator: submission failed")

// Submitter delivers a payload and returns the raw result text.
type Submitter interface {
	Submit(ctx context.Context, p *request.Payload) (string, error)
}

// New creates a Submitter based on config.
func New(cfg *config.Config) (Submitter, error) {
	switch cfg.Estimator.Backend {
	case "upload", "":
		opts := []grassapi.Option{}
		if cfg.Estimator.BaseURL != "" {
			opts = append(opts, grassapi.WithBaseURL(cfg.Estimator.BaseURL))
		}
		if cfg.Estimator.TimeoutSecs > 0 {
			opts = append(opts, grassapi.WithTimeout(time.Duration(cfg.Estimator.TimeoutSecs)*time.Second))
		}
		return NewRemote(grassapi.NewClient(opts...)), nil
	case "anthropic":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("estimator: anthropic backend requires anthropic.key")
		}
		client := anthropic.NewClient(cfg.Anthropic.Key, anthropic.WithMaxRetries(0))
		return NewVision(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens), nil
	default:
		return nil, eris.Errorf("estimator: unknown backend %q", cfg.Estimator.Backend)
	}
}

func failed(err error, msg string) error {
	return eris.Wrapf(ErrSubmissionFailed, "%s: %v", msg, err)
}
