package cli

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/soocke/deskdup/config"
	"github.com/soocke/deskdup/debug"
	"github.com/soocke/deskdup/domain/capture"
)

const debugSampleInterval = 2 * time.Second

func newWatchCommand(e *env) *cobra.Command {
	var (
		delay        time.Duration
		duration     time.Duration
		allowSkips   bool
		clearBacklog bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run auto capture for a while and count the frame events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("delay") {
				delay = e.cfg.Delay()
			}
			if !flags.Changed("allow-skips") {
				allowSkips = e.cfg.AllowSkips
			}
			if !flags.Changed("clear-backlog") {
				clearBacklog = e.cfg.ClearBacklog
			}

			ctx := cmd.Context()
			if e.v.ConfigFileUsed() != "" {
				config.Watch(e.v, e.logger, func(c *config.Config) {
					e.level.Set(parseLevel(c.LogLevel))
				})
			}

			dup, cleanup, err := e.open()
			if err != nil {
				return err
			}
			defer cleanup()

			if e.cfg.Debug {
				debug.StartGoroutineLogger(ctx, debugSampleInterval, e.logger, dup.Stats)
				debug.StartMemLogger(ctx, debugSampleInterval, e.logger)
			}

			var frames atomic.Int64
			dup.On(capture.EventFrame, func(capture.Frame) { frames.Add(1) })

			if err := dup.StartAutoCapture(delay, allowSkips); err != nil {
				return err
			}
			timer := time.NewTimer(duration)
			defer timer.Stop()
			ended := ""
			select {
			case <-timer.C:
				ended = "duration elapsed"
			case <-ctx.Done():
				ended = "interrupted"
			}
			running := dup.Running()
			dup.StopAutoCapture(clearBacklog)

			s := dup.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d frames in %s (delivered=%d skipped=%d suppressed=%d timeouts=%d errors=%d)\n",
				ended, frames.Load(), s.RunTime.Round(time.Millisecond),
				s.Delivered, s.Skipped, s.Suppressed, s.Timeouts, s.Errors)
			if !running {
				fmt.Fprintln(out, "auto capture ended early: access to the screen was lost")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.DurationVarP(&delay, "delay", "d", 100*time.Millisecond, "interval between captures")
	f.DurationVar(&duration, "duration", 2*time.Second, "how long to capture")
	f.BoolVar(&allowSkips, "allow-skips", true, "drop frames while an earlier one is undelivered")
	f.BoolVar(&clearBacklog, "clear-backlog", true, "discard undelivered frames on stop")
	return cmd
}
