package engine

import (
	"sync/atomic"

	"github.com/chmousset/siglib/internal/sig"
)

// Clock is the monotonic tick source of a run.
//
// Every tick is handed out exactly once, in increasing order, so a replayed
// session evaluates the same ticks in the same order.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// although the engine only advances it from the Run loop.
type Clock struct {
	tick atomic.Uint32
}

// NewClock creates a clock whose first tick is 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose first tick is start.
// Used to resume a session at a known position.
func NewClockAt(start sig.Tick) *Clock {
	c := &Clock{}
	c.tick.Store(uint32(start))
	return c
}

// Next returns the tick to evaluate and advances the clock.
func (c *Clock) Next() sig.Tick {
	return sig.Tick(c.tick.Add(1) - 1)
}

// Current returns the next tick to be handed out without advancing.
func (c *Clock) Current() sig.Tick {
	return sig.Tick(c.tick.Load())
}
