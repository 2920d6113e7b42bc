package engine

import (
	"sync/atomic"
	"time"
)

// TimeProvider abstracts the wall clock so the simulation can be driven in tests.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider reads the system clock.
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time { return time.Now() }

// ManualClock only moves when told to. Soak runs and tests use it to make
// ticks and offline catch-up deterministic.
type ManualClock struct {
	unixNano atomic.Int64
}

// NewManualClock returns a clock stopped at start.
func NewManualClock(start time.Time) *ManualClock {
	c := &ManualClock{}
	c.Set(start)
	return c
}

func (c *ManualClock) Now() time.Time { return time.Unix(0, c.unixNano.Load()).UTC() }

// Set moves the clock to t, backwards included.
func (c *ManualClock) Set(t time.Time) { c.unixNano.Store(t.UnixNano()) }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.unixNano.Add(int64(d)) }
