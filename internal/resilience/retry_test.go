package resilience

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{Attempts: attempts, Backoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), "test", func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return statusErr(503)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(2), "test", func(context.Context) error {
		calls++
		return statusErr(502)
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "status 502", err.Error())
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(5), "test", func(context.Context) error {
		calls++
		return statusErr(403)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroPolicyIsSingleAttempt(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), Policy{}, "test", func(context.Context) error {
		calls++
		return statusErr(500)
	})
	assert.Equal(t, 1, calls)
}

func TestDo_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{Attempts: 5, Backoff: time.Hour}, "test", func(context.Context) error {
		calls++
		cancel()
		return statusErr(503)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicyDelay(t *testing.T) {
	p := Policy{Attempts: 5, Backoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond}.withDefaults()

	assert.Equal(t, 100*time.Millisecond, p.delay(1))
	assert.Equal(t, 200*time.Millisecond, p.delay(2))
	assert.Equal(t, 300*time.Millisecond, p.delay(3))

	p.Jitter = 0.5
	for i := 0; i < 20; i++ {
		d := p.delay(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) Transient() bool { return e == 429 || e >= 500 }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"503", statusErr(503), true},
		{"429", statusErr(429), true},
		{"400", statusErr(400), false},
		{"wrapped 500", fmt.Errorf("send: %w", statusErr(500)), true},
		{"timeout", timeoutErr{}, true},
		{"refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
