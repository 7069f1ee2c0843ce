package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soocke/deskdup/domain/capture"
)

func newGrabCommand(e *env) *cobra.Command {
	var (
		retries int
		async   bool
	)
	cmd := &cobra.Command{
		Use:   "grab",
		Short: "Capture a single frame and print its size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("retries") {
				retries = e.cfg.RetryCount
			}
			dup, cleanup, err := e.open()
			if err != nil {
				return err
			}
			defer cleanup()

			start := time.Now()
			var f capture.Frame
			if async {
				res := <-dup.GetFrameAsync(cmd.Context(), retries)
				f, err = res.Frame, res.Err
			} else {
				f, err = dup.GetFrameContext(cmd.Context(), retries)
			}
			if err != nil {
				return err
			}

			s := dup.Stats()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "frame %dx%d (%d bytes) in %s, attempts=%d reinitializations=%d\n",
				f.Width, f.Height, len(f.Pix), time.Since(start).Round(time.Millisecond),
				s.Captures+s.Timeouts+s.AccessLost+s.Errors, s.Reinitializations)
			return err
		},
	}
	cmd.Flags().IntVarP(&retries, "retries", "r", capture.DefaultRetryCount, "retry budget (attempts = retries + 1)")
	cmd.Flags().BoolVar(&async, "async", false, "capture on a worker goroutine")
	return cmd
}
