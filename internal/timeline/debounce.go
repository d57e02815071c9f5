package timeline

import "time"

// DefaultCoalesceWindow bounds how often rapid zoom/refresh invalidations
// can re-trigger a cache clear.
const DefaultCoalesceWindow = 75 * time.Millisecond

// Coalescer collapses bursts of idempotent invalidation requests. The
// first request in a quiet period runs fn immediately, so a single zoom
// change never renders against a stale cache; further requests inside the
// window fold into one pending trailing run. The trailing run is delivered
// on the caller's goroutine by the next Request, Drain, or Flush, never on
// a timer goroutine, so fn always executes on the event loop that owns the
// render state.
type Coalescer struct {
	window  time.Duration
	fn      func()
	now     func() time.Time
	lastRun time.Time
	pending bool
}

// NewCoalescer creates a coalescer. A non-positive window runs fn on every
// request, which keeps tests deterministic.
func NewCoalescer(window time.Duration, fn func()) *Coalescer {
	return &Coalescer{window: window, fn: fn, now: time.Now}
}

// Request runs fn now if the window has elapsed since the last run, or
// marks a trailing run otherwise.
func (c *Coalescer) Request() {
	if c.window <= 0 {
		c.fn()
		return
	}
	if c.now().Sub(c.lastRun) >= c.window {
		c.run()
		return
	}
	c.pending = true
}

// Drain runs a pending trailing request once the window has elapsed. The
// engine calls it at the top of every frame so trailing invalidations land
// before geometry is materialized.
func (c *Coalescer) Drain() {
	if c.pending && c.now().Sub(c.lastRun) >= c.window {
		c.run()
	}
}

// Flush runs any pending trailing request immediately, ignoring the window.
func (c *Coalescer) Flush() {
	if c.pending {
		c.run()
	}
}

// Stop drops any pending trailing request without running it.
func (c *Coalescer) Stop() {
	c.pending = false
}

func (c *Coalescer) run() {
	c.pending = false
	c.lastRun = c.now()
	c.fn()
}
