package capture

import (
	"log/slog"
	"time"
)

// Option configures a Duplication.
type Option func(*Duplication)

// WithLogger sets the structured logger. The screen index is attached to
// every record.
func WithLogger(l *slog.Logger) Option {
	return func(d *Duplication) { d.logger = l }
}

// WithScheduler replaces the periodic loop used by auto capture.
func WithScheduler(s Scheduler) Option {
	return func(d *Duplication) {
		if s != nil {
			d.scheduler = s
		}
	}
}

// WithCaptureTimeout bounds a single capture attempt.
func WithCaptureTimeout(t time.Duration) Option {
	return func(d *Duplication) {
		if t > 0 {
			d.timeout = t
		}
	}
}

// WithStatsInterval sets how often auto capture logs its stats at debug
// level. Zero or negative disables the log line.
func WithStatsInterval(t time.Duration) Option {
	return func(d *Duplication) { d.statsInterval = t }
}

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }
