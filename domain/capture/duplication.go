package capture

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
)

const defaultStatsLogInterval = 5 * time.Second

// Duplication exposes one screen through synchronous, asynchronous and
// continuous capture. Use New to construct one and Close to release it.
type Duplication struct {
	session       *Session
	scheduler     Scheduler
	logger        *slog.Logger
	events        *Emitter
	queue         *dispatcher
	timeout       time.Duration
	statsInterval time.Duration

	stats        counters
	clock        runClock
	lastStatsLog atomic.Int64

	// shotMu keeps the attempts of concurrent one-shot captures from
	// interleaving and is held by StartAutoCapture while it publishes run.
	shotMu  sync.Mutex
	workers conc.WaitGroup

	// autoMu serialises StartAutoCapture and StopAutoCapture. run is the
	// active loop, cleared lock-free when the loop ends on access loss.
	autoMu sync.Mutex
	run    atomic.Pointer[autoRun]
	last   *autoRun

	closeMu sync.RWMutex
	closed  atomic.Bool
}

// New returns a Duplication for screenIndex backed by driver. The session is
// not opened until Initialize is called.
func New(driver Driver, screenIndex int, opts ...Option) *Duplication {
	d := &Duplication{
		scheduler:     TickerScheduler{},
		timeout:       DefaultCaptureTimeout,
		statsInterval: defaultStatsLogInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = discardLogger()
	}
	d.logger = d.logger.With("screen", screenIndex)
	d.session = NewSession(driver, screenIndex, d.timeout, d.logger)
	d.events = NewEmitter(d.logger)
	d.queue = newDispatcher(d.logger)
	return d
}

// ScreenIndex returns the duplicated screen.
func (d *Duplication) ScreenIndex() int { return d.session.ScreenIndex() }

// Initialize (re)creates the platform session. It returns an *InitError when
// the screen cannot be duplicated.
func (d *Duplication) Initialize() error {
	if d.closed.Load() {
		return ErrClosed
	}
	if err := d.session.Initialize(); err != nil {
		d.logger.Error("capture.initialize failed", "error", err)
		return err
	}
	d.logger.Info("capture.initialized")
	return nil
}

// Initialized reports whether the session is ready to capture.
func (d *Duplication) Initialized() bool { return d.session.Initialized() }

// Events returns the subscriber registry frame events are published on.
func (d *Duplication) Events() *Emitter { return d.events }

// On subscribes fn to event and returns the subscription ID.
func (d *Duplication) On(event string, fn Listener) string { return d.events.On(event, fn) }

// Once subscribes fn to the next emission of event.
func (d *Duplication) Once(event string, fn Listener) string { return d.events.Once(event, fn) }

// Off removes a subscription.
func (d *Duplication) Off(id string) bool { return d.events.Off(id) }

// Stats returns a snapshot of the capture counters.
func (d *Duplication) Stats() Stats {
	s := d.stats.snapshot()
	s.Running = d.Running()
	s.RunTime, s.TotalRunTime = d.clock.Values(time.Now())
	s.Pending = d.queue.Len()
	return s
}

// Close stops auto capture (discarding its backlog), waits for pending
// asynchronous captures and releases the session. Afterwards the capture
// methods return ErrClosed; repeated Close calls return nil. Close may be
// called from a frame listener.
func (d *Duplication) Close() error {
	d.closeMu.Lock()
	if d.closed.Swap(true) {
		d.closeMu.Unlock()
		return nil
	}
	d.closeMu.Unlock()

	d.StopAutoCapture(true)
	d.workers.Wait()
	d.queue.Close()
	err := d.session.Close()
	d.logger.Debug("capture.closed")
	return err
}

func (d *Duplication) logStats() {
	if d.statsInterval <= 0 || !shouldLogEvery(&d.lastStatsLog, d.statsInterval) {
		return
	}
	stats := d.Stats()
	d.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"timeouts", stats.Timeouts,
		"errors", stats.Errors,
		"delivered", stats.Delivered,
		"skipped", stats.Skipped,
		"pending", stats.Pending,
		"avg_capture", stats.AvgCapture,
	)
}
