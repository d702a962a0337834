package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"cheatbot/internal/domain"
)

// CooldownError is returned when a user invokes a command again too soon.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("command on cooldown, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *CooldownError) Unwrap() error { return domain.ErrRateLimit }

// Cooldown allows one use per period per key, using a token bucket of burst 1
// for each key. Times are passed in so callers control the clock.
type Cooldown struct {
	period time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewCooldown creates a Cooldown. A period <= 0 disables it.
func NewCooldown(period time.Duration) *Cooldown {
	return &Cooldown{
		period:  period,
		buckets: make(map[string]*bucket),
	}
}

// Allow consumes the key's token at now, or returns a *CooldownError saying
// how long until the next use is permitted. Rejected attempts do not push the
// window further out.
func (c *Cooldown) Allow(key string, now time.Time) error {
	if c.period <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(c.period), 1)}
		c.buckets[key] = b
	}
	b.lastSeen = now

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return &CooldownError{RetryAfter: c.period}
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return &CooldownError{RetryAfter: delay}
	}
	return nil
}

// Sweep drops buckets idle for a full period; such a bucket is back to a
// full token, so forgetting it changes nothing.
func (c *Cooldown) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, b := range c.buckets {
		if now.Sub(b.lastSeen) >= c.period {
			delete(c.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (c *Cooldown) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets)
}

// runSweeper calls sweep every interval until ctx is done.
func runSweeper(ctx context.Context, interval time.Duration, sweep func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sweep()
		case <-ctx.Done():
			return
		}
	}
}
