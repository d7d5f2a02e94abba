package pricing

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Cache loads the rate at most once and remembers the outcome, success or
// failure, until Reset. A failed load leaves the rate unset.
type Cache struct {
	loader Loader

	mu     sync.Mutex
	loaded bool
	rate   *float64
	err    error
}

// NewCache wraps loader. A nil loader means pricing is never available.
func NewCache(loader Loader) *Cache {
	return &Cache{loader: loader}
}

// Rate returns the cached rate, loading it on first use. Nil means unavailable.
func (c *Cache) Rate(ctx context.Context) *float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		c.loaded = true
		if c.loader != nil {
			r, err := c.loader.Load(ctx)
			if err != nil {
				c.err = err
				zap.L().Warn("pricing unavailable for session", zap.Error(err))
			} else {
				c.rate = &r
			}
		}
	}

	if c.rate == nil {
		return nil
	}
	r := *c.rate
	return &r
}

// Err returns the load failure, if any.
func (c *Cache) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Reset forgets the cached outcome so the next Rate call loads again.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.rate = nil
	c.err = nil
}

// Static is a Loader that always returns a fixed rate.
type Static float64

// Load implements Loader.
func (s Static) Load(context.Context) (float64, error) {
	return float64(s), nil
}
