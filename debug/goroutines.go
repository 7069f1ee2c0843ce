package debug

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/soocke/deskdup/domain/capture"
)

// StatsFunc returns the current counters of a capture pipeline.
type StatsFunc func() capture.Stats

// StartGoroutineLogger logs the goroutine count next to the delivery backlog
// of the capture pipeline every interval until ctx is done. A backlog that
// keeps growing together with the goroutine count points at a stuck frame
// listener rather than at the capture workers. stats may be nil.
func StartGoroutineLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, stats StatsFunc) {
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		var lastDelivered, lastSkipped uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			attrs := []any{
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.Uint64("stack_inuse", ms.StackInuse),
			}
			if stats != nil {
				s := stats()
				attrs = append(attrs,
					slog.Bool("running", s.Running),
					slog.Int("backlog", s.Pending),
					slog.Uint64("delivered", s.Delivered-lastDelivered),
					slog.Uint64("skipped", s.Skipped-lastSkipped),
				)
				lastDelivered, lastSkipped = s.Delivered, s.Skipped
			}
			logger.Info("capture-pipeline", attrs...)
		}
	}()
}
