// Package timeout provides polled software timers for protothreads.
package timeout

import (
	"sync"
	"time"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock only advanced explicitly.
type ManualClock struct {
	now  time.Time
	lock sync.Mutex
}

// NewManualClock creates a ManualClock starting at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *ManualClock) Advance(d time.Duration) {
	c.lock.Lock()
	c.now = c.now.Add(d)
	c.lock.Unlock()
}

// Timeout expires a given duration after it's (re)started. A Timeout that
// was never started, or was stopped, never expires.
type Timeout struct {
	// Clock is the time source, SystemClock if nil.
	Clock Clock

	deadline time.Time
	armed    bool
}

// New creates a Timeout using clock.
func New(clock Clock) *Timeout {
	return &Timeout{Clock: clock}
}

func (t *Timeout) now() time.Time {
	if t.Clock == nil {
		return time.Now()
	}
	return t.Clock.Now()
}

// Restart arms the timeout to expire after d.
func (t *Timeout) Restart(d time.Duration) {
	t.deadline, t.armed = t.now().Add(d), true
}

// Stop disarms the timeout.
func (t *Timeout) Stop() {
	t.armed = false
}

// IsArmed returns true if the timeout has been started and not stopped.
func (t *Timeout) IsArmed() bool {
	return t.armed
}

// IsExpired returns true once an armed timeout reaches its deadline.
func (t *Timeout) IsExpired() bool {
	return t.armed && !t.now().Before(t.deadline)
}

// Remaining returns the time left before expiration, 0 if expired or
// not armed.
func (t *Timeout) Remaining() time.Duration {
	if !t.armed {
		return 0
	}
	if d := t.deadline.Sub(t.now()); d > 0 {
		return d
	}
	return 0
}
