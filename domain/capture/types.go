package capture

import "time"

// Driver is the platform duplication primitive. Implementations live in the
// platform package; tests use scripted fakes.
type Driver interface {
	// MonitorCount reports how many displays the driver can duplicate.
	MonitorCount() int
	// Open creates a duplication session for the given screen.
	Open(screenIndex int) (Handle, error)
}

// Handle is an open duplication session for one screen. A Handle is used by
// one goroutine at a time; Session serialises access.
type Handle interface {
	// Capture blocks until a frame is available or timeout elapses.
	Capture(timeout time.Duration) Outcome
	Close() error
}

// CaptureFunc performs one capture attempt on behalf of a periodic loop.
type CaptureFunc func() Outcome

// TickFunc receives each periodic outcome. Returning false ends the loop.
type TickFunc func(Outcome) bool

// PeriodicOptions parameterises a periodic capture loop.
type PeriodicOptions struct {
	Delay time.Duration
	// AllowSkips permits dropping a tick whose predecessor has not been
	// delivered yet instead of queueing it.
	AllowSkips bool
}

// Scheduler runs the timer-driven capture loop used by auto capture.
type Scheduler interface {
	RunPeriodic(opts PeriodicOptions, capture CaptureFunc, onTick TickFunc) Stopper
}

// Stopper ends a periodic loop. Stop blocks until the loop goroutine exited
// and is safe to call more than once.
type Stopper interface {
	Stop()
}

// MonitorCount is a pass-through to the driver; no session is required.
func MonitorCount(d Driver) int {
	if d == nil {
		return 0
	}
	return d.MonitorCount()
}
