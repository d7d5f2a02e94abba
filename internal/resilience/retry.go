// Package resilience retries outbound calls that failed for transient reasons.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Policy controls retry behavior with exponential backoff and jitter.
type Policy struct {
	// Attempts is the total number of tries. 1 disables retries.
	Attempts int

	// Backoff is the delay before the first retry.
	Backoff time.Duration

	// MaxBackoff caps any single delay.
	MaxBackoff time.Duration

	// Jitter is the random spread as a fraction of each delay (0.25 = ±25%).
	Jitter float64
}

// DefaultPolicy is three tries starting at 250ms.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:   3,
		Backoff:    250 * time.Millisecond,
		MaxBackoff: 5 * time.Second,
		Jitter:     0.25,
	}
}

// Do runs fn until it succeeds, returns a non-transient error, runs out of
// attempts or ctx is done. The last error is returned. op names the call in
// retry logs.
func Do(ctx context.Context, p Policy, op string, fn func(ctx context.Context) error) error {
	p = p.withDefaults()

	var err error
	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil || ctx.Err() != nil || !IsTransient(err) || attempt >= p.Attempts {
			return err
		}

		zap.L().Warn("retrying operation",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		timer := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

func (p Policy) withDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.Backoff <= 0 {
		p.Backoff = 250 * time.Millisecond
	}
	if p.MaxBackoff < p.Backoff {
		p.MaxBackoff = p.Backoff
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	return p
}

// delay is the wait after the given failed attempt (1-based).
func (p Policy) delay(attempt int) time.Duration {
	d := float64(p.Backoff) * math.Pow(2, float64(attempt-1))
	if d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
