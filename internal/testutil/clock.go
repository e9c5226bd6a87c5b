package testutil

import (
	"sync"
	"time"
)

// Clock is a manually driven clock. Every call to Now moves it forward by
// Step so rows written in sequence get distinct, ordered timestamps.
//
// Thread-safety: all methods are safe for concurrent use.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewClock starts a clock at start with a one millisecond step.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC(), Step: time.Millisecond}
}

// Now returns the current time and then ticks.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.Step)
	return t
}

// Peek returns the current time without ticking.
func (c *Clock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}
