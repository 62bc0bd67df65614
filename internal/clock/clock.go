// internal/clock/clock.go
//
// Per-session game clock.
// time.Now carries a monotonic reading on every supported platform, and
// Time.Sub uses it, so elapsed values ignore wall-clock adjustments.

package clock

import (
	"sync"
	"time"
)

// Clock measures the duration of one game.
type Clock struct {
	mu    sync.Mutex
	now   func() time.Time
	start time.Time
	end   time.Time
}

// New returns a clock backed by time.Now.
func New() *Clock {
	return &Clock{now: time.Now}
}

// NewWithSource uses now instead of time.Now (tests).
func NewWithSource(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Start records the start instant and clears any previous stop.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = c.now()
	c.end = time.Time{}
}

// Stop records the end instant. It is a no-op before Start or after a previous Stop.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.start.IsZero() || !c.end.IsZero() {
		return
	}
	c.end = c.now()
}

// Running reports whether the clock was started and not yet stopped.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.start.IsZero() && c.end.IsZero()
}

// Elapsed is end-start once stopped, now-start while running, 0 before Start.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.start.IsZero() {
		return 0
	}
	end := c.end
	if end.IsZero() {
		end = c.now()
	}
	return end.Sub(c.start)
}

// ElapsedMillis is Elapsed in whole milliseconds.
func (c *Clock) ElapsedMillis() int64 {
	return c.Elapsed().Milliseconds()
}
