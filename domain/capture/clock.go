package capture

import (
	"sync"
	"time"
)

// runClock tracks how long auto capture has been running, both for the
// current run and accumulated over all runs. The zero value is ready to use.
type runClock struct {
	mu          sync.Mutex
	active      bool
	started     time.Time
	lastRun     time.Duration
	accumulated time.Duration
}

// Start marks the beginning of a run. Starting an active clock is a no-op.
func (c *runClock) Start(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return
	}
	c.active = true
	c.started = now
	c.lastRun = 0
}

// Stop finalises the current run. Stopping an idle clock is a no-op.
func (c *runClock) Stop(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.lastRun = now.Sub(c.started)
	c.accumulated += c.lastRun
	c.active = false
}

// Values returns the current (or last) run duration and the total including
// an ongoing run.
func (c *runClock) Values(now time.Time) (run, total time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	run = c.lastRun
	total = c.accumulated
	if c.active {
		run = now.Sub(c.started)
		total += run
	}
	return
}
