package capture

import (
	"context"
	"sync"
	"time"
)

// TickerScheduler is the default Scheduler: one goroutine captures on every
// tick of a time.Ticker. Ticks missed while a capture is still running are
// dropped by the ticker, so captures never pile up behind a slow platform.
type TickerScheduler struct{}

// RunPeriodic starts the loop and returns immediately.
func (TickerScheduler) RunPeriodic(opts PeriodicOptions, capture CaptureFunc, onTick TickFunc) Stopper {
	ctx, cancel := context.WithCancel(context.Background())
	l := &tickerLoop{cancel: cancel, done: make(chan struct{})}
	go l.run(ctx, opts.Delay, capture, onTick)
	return l
}

type tickerLoop struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

func (l *tickerLoop) run(ctx context.Context, delay time.Duration, capture CaptureFunc, onTick TickFunc) {
	defer close(l.done)

	t := time.NewTicker(delay)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if ctx.Err() != nil {
			return
		}
		// An outcome captured while Stop is in progress is still handed over;
		// the controller decides whether it may be delivered.
		if !onTick(capture()) {
			return
		}
	}
}

// Stop cancels the loop and waits for an in-flight capture to finish.
func (l *tickerLoop) Stop() {
	l.stopOnce.Do(l.cancel)
	<-l.done
}
