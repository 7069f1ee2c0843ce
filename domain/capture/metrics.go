package capture

import (
	"sync/atomic"
	"time"
)

// Stats summarises capture behaviour for instrumentation.
type Stats struct {
	// Captures counts attempts that produced a frame, across one-shot and
	// auto capture.
	Captures   uint64
	Timeouts   uint64
	AccessLost uint64
	Errors     uint64
	// Reinitializations counts session re-creations done by the retry loop.
	Reinitializations uint64

	// Auto capture delivery.
	Delivered  uint64
	Skipped    uint64
	Suppressed uint64
	Pending    int

	AvgCapture   time.Duration
	LastCapture  time.Time
	Running      bool
	RunTime      time.Duration
	TotalRunTime time.Duration
}

type counters struct {
	captures     atomic.Uint64
	timeouts     atomic.Uint64
	accessLost   atomic.Uint64
	errors       atomic.Uint64
	reinits      atomic.Uint64
	delivered    atomic.Uint64
	skipped      atomic.Uint64
	suppressed   atomic.Uint64
	captureNanos atomic.Uint64
	lastCapture  atomic.Int64
}

// observe records one attempt and how long it took.
func (c *counters) observe(o Outcome, elapsed time.Duration) {
	switch o.Kind {
	case OutcomeSuccess:
		c.captures.Add(1)
		c.captureNanos.Add(uint64(elapsed.Nanoseconds()))
		c.lastCapture.Store(time.Now().UnixNano())
	case OutcomeTimeout:
		c.timeouts.Add(1)
	case OutcomeAccessLost:
		c.accessLost.Add(1)
	default:
		c.errors.Add(1)
	}
}

func (c *counters) snapshot() Stats {
	captures := c.captures.Load()
	var avg time.Duration
	if total := c.captureNanos.Load(); captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
	}
	var last time.Time
	if ns := c.lastCapture.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	return Stats{
		Captures:          captures,
		Timeouts:          c.timeouts.Load(),
		AccessLost:        c.accessLost.Load(),
		Errors:            c.errors.Load(),
		Reinitializations: c.reinits.Load(),
		Delivered:         c.delivered.Load(),
		Skipped:           c.skipped.Load(),
		Suppressed:        c.suppressed.Load(),
		AvgCapture:        avg,
		LastCapture:       last,
	}
}
