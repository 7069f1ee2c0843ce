package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/panics"
)

// Result is the single value delivered by GetFrameAsync.
type Result struct {
	Frame Frame
	Err   error
}

// GetFrame captures one frame, retrying transient failures up to retryCount
// times (at most retryCount+1 attempts). Lost access re-creates the session
// before the next attempt. A frame whose first two pixels are zero is retried
// while budget remains and returned as-is once it is exhausted.
//
// GetFrame fails with ErrSessionBusy while auto capture is running.
func (d *Duplication) GetFrame(retryCount int) (Frame, error) {
	return d.GetFrameContext(context.Background(), retryCount)
}

// GetFrameContext is GetFrame with cancellation checked between attempts.
func (d *Duplication) GetFrameContext(ctx context.Context, retryCount int) (Frame, error) {
	if d.closed.Load() {
		return Frame{}, ErrClosed
	}
	if d.run.Load() != nil {
		return Frame{}, ErrSessionBusy
	}

	d.shotMu.Lock()
	defer d.shotMu.Unlock()

	if d.run.Load() != nil {
		return Frame{}, ErrSessionBusy
	}
	if !d.session.Initialized() {
		return Frame{}, ErrNotInitialized
	}
	return d.acquire(ctx, retryCount)
}

// GetFrameAsync runs GetFrameContext on a worker goroutine and returns a
// channel that receives exactly one Result. The caller is never blocked.
func (d *Duplication) GetFrameAsync(ctx context.Context, retryCount int) <-chan Result {
	ch := make(chan Result, 1)

	d.closeMu.RLock()
	defer d.closeMu.RUnlock()
	if d.closed.Load() {
		ch <- Result{Err: ErrClosed}
		return ch
	}

	d.workers.Go(func() {
		var res Result
		var pc panics.Catcher
		pc.Try(func() { res.Frame, res.Err = d.GetFrameContext(ctx, retryCount) })
		if r := pc.Recovered(); r != nil {
			d.logger.Error("capture.async worker panicked", "error", r.Value, "stack", string(r.Stack))
			res = Result{Err: fmt.Errorf("capture: async worker: %w", r.AsError())}
		}
		ch <- res
	})
	return ch
}

// acquire is the bounded retry loop shared by the one-shot entry points.
func (d *Duplication) acquire(ctx context.Context, retryCount int) (Frame, error) {
	remaining := max(retryCount, 0)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Frame{}, err
		}

		start := time.Now()
		out := d.session.CaptureOnce()
		d.stats.observe(out, time.Since(start))

		dec := Classify(out, remaining)
		d.logger.Debug("capture.attempt",
			"attempt", attempt,
			"remaining", remaining,
			"outcome", out.Kind.String(),
			"action", dec.Action.String(),
		)

		switch dec.Action {
		case ActionAccept:
			return out.Frame, nil
		case ActionRetry:
		case ActionReinitialize:
			d.stats.reinits.Add(1)
			if err := d.session.Initialize(); err != nil {
				d.logger.Warn("capture.reinitialize failed", "attempt", attempt, "error", err)
				return Frame{}, err
			}
		case ActionFail:
			if errors.Is(dec.Err, ErrTimeout) || errors.Is(dec.Err, ErrAccessLost) {
				return Frame{}, &ExhaustedError{Cause: dec.Err, Attempts: attempt}
			}
			return Frame{}, dec.Err
		}
		remaining--
	}
}
