package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soocke/deskdup/domain/capture"
	"github.com/soocke/deskdup/platform"
)

func newMonitorsCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "monitors",
		Short: "Print how many screens the driver can duplicate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			drv, err := e.openDriver(e.cfg.Driver, platform.Options{Logger: e.logger})
			if err != nil {
				return fmt.Errorf("open driver %q: %w", e.cfg.Driver, err)
			}
			defer drv.Close()

			_, err = fmt.Fprintln(cmd.OutOrStdout(), capture.MonitorCount(drv))
			return err
		},
	}
}
