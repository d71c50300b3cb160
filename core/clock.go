package core

import (
	"sync"
	"time"
)

// Clock paces the firmware tasks. Sleep is the only place a task suspends,
// and it is never called inside a Guard or from an interrupt handler.
type Clock interface {
	// Now returns the time since boot.
	Now() time.Duration

	// Sleep suspends the calling task for a fixed, non-cancellable delay.
	Sleep(d time.Duration)
}

// SystemClock returns a Clock backed by the runtime timer.
func SystemClock() Clock {
	return &systemClock{boot: time.Now()}
}

type systemClock struct {
	boot time.Time
}

func (c *systemClock) Now() time.Duration {
	return time.Since(c.boot)
}

func (c *systemClock) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// ManualClock is a Clock whose time only moves when Sleep or Advance is
// called. Simulations and tests use it to run the pipeline without waiting.
type ManualClock struct {
	mu  sync.Mutex
	now time.Duration

	// OnSleep, if set, runs after every Sleep with the new time.
	OnSleep func(now time.Duration)
}

// Now returns the simulated uptime.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the simulated uptime by d.
func (c *ManualClock) Sleep(d time.Duration) {
	now := c.Advance(d)
	if c.OnSleep != nil {
		c.OnSleep(now)
	}
}

// Advance moves the clock forward and returns the new uptime.
func (c *ManualClock) Advance(d time.Duration) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now += d
	}
	return c.now
}
