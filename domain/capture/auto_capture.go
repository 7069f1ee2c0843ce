package capture

import (
	"sync/atomic"
	"time"
)

// autoRun is the state of one started auto capture loop.
type autoRun struct {
	delay      time.Duration
	allowSkips bool
	stopper    Stopper

	// suppressed is set when the run was stopped with clearBacklog; queued
	// frame events of a suppressed run are dropped at delivery time.
	suppressed atomic.Bool
	// pending counts frame events of this run not yet delivered.
	pending atomic.Int64
}

// Running reports whether an auto capture loop is active.
func (d *Duplication) Running() bool { return d.run.Load() != nil }

// StartAutoCapture captures a frame every delay on a background goroutine and
// emits each one as an EventFrame event. Calling it while a loop is already
// running does nothing. It fails with ErrSessionBusy while a one-shot capture
// is in progress.
//
// With allowSkips, a frame captured while an earlier frame of the same run is
// still waiting for delivery is dropped; without it every frame is queued and
// delivered in capture order.
//
// Auto capture does not filter blank frames and does not recover from lost
// access: the loop ends and Running reports false until it is started again.
func (d *Duplication) StartAutoCapture(delay time.Duration, allowSkips bool) error {
	d.autoMu.Lock()
	defer d.autoMu.Unlock()

	if d.closed.Load() {
		return ErrClosed
	}
	if d.run.Load() != nil {
		return nil
	}
	if delay <= 0 {
		return ErrInvalidDelay
	}
	// Holding shotMu until run is published makes one-shot callers that queue
	// behind it observe the loop.
	if !d.shotMu.TryLock() {
		return ErrSessionBusy
	}
	defer d.shotMu.Unlock()
	if !d.session.Initialized() {
		return ErrNotInitialized
	}
	// A loop that ended on its own may still be unwinding.
	if prev := d.last; prev != nil && prev.stopper != nil {
		prev.stopper.Stop()
	}

	run := &autoRun{delay: delay, allowSkips: allowSkips}
	d.run.Store(run)
	d.last = run
	now := time.Now()
	d.clock.Start(now)
	d.lastStatsLog.Store(now.UnixNano())

	run.stopper = d.scheduler.RunPeriodic(
		PeriodicOptions{Delay: delay, AllowSkips: allowSkips},
		d.captureTick,
		func(o Outcome) bool { return d.onTick(run, o) },
	)
	d.logger.Info("capture.auto started", "delay", delay, "allow_skips", allowSkips)
	return nil
}

// StopAutoCapture ends the auto capture loop. When it returns no new capture
// will start. With clearBacklog, frame events captured but not yet delivered
// are discarded; otherwise they are still delivered after StopAutoCapture
// returns. Stopping an idle controller does nothing.
//
// StopAutoCapture may be called from a frame listener.
func (d *Duplication) StopAutoCapture(clearBacklog bool) {
	d.autoMu.Lock()
	defer d.autoMu.Unlock()

	run := d.run.Load()
	if run == nil {
		return
	}
	run.suppressed.Store(clearBacklog)
	d.endRun(run)
	if run.stopper != nil {
		run.stopper.Stop()
	}
	d.logger.Info("capture.auto stopped", "clear_backlog", clearBacklog, "pending", run.pending.Load())
}

func (d *Duplication) captureTick() Outcome {
	start := time.Now()
	out := d.session.CaptureOnce()
	d.stats.observe(out, time.Since(start))
	return out
}

// onTick runs on the capture goroutine and must never call listener code.
func (d *Duplication) onTick(run *autoRun, o Outcome) bool {
	d.logStats()

	switch o.Kind {
	case OutcomeSuccess:
		d.deliver(run, o.Frame)
		return true
	case OutcomeAccessLost:
		d.logger.Warn("capture.auto access lost, stopping")
		d.endRun(run)
		return false
	default:
		d.logger.Debug("capture.auto tick failed", "outcome", o.Kind.String(), "message", o.Message)
		return true
	}
}

func (d *Duplication) deliver(run *autoRun, f Frame) {
	if run.suppressed.Load() {
		d.stats.suppressed.Add(1)
		return
	}
	if run.allowSkips && run.pending.Load() > 0 {
		d.stats.skipped.Add(1)
		return
	}

	run.pending.Add(1)
	ok := d.queue.Enqueue(func() {
		run.pending.Add(-1)
		if run.suppressed.Load() {
			d.stats.suppressed.Add(1)
			return
		}
		d.events.Emit(EventFrame, f)
		d.stats.delivered.Add(1)
	})
	if !ok {
		run.pending.Add(-1)
	}
}

// endRun marks run as finished if it is still the active one.
func (d *Duplication) endRun(run *autoRun) {
	if d.run.CompareAndSwap(run, nil) {
		d.clock.Stop(time.Now())
	}
}
