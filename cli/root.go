// Package cli implements the deskdup command line: listing monitors, taking
// one frame and running auto capture for a while.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soocke/deskdup/config"
	"github.com/soocke/deskdup/domain/capture"
	"github.com/soocke/deskdup/platform"
)

// DriverOpener creates the capture driver named in the configuration.
type DriverOpener func(name string, opts platform.Options) (platform.Driver, error)

// env is the state shared by all commands of one invocation.
type env struct {
	v          *viper.Viper
	cfg        *config.Config
	level      *slog.LevelVar
	logger     *slog.Logger
	openDriver DriverOpener
}

// Execute runs the root command against the real platform drivers.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand(platform.Open).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. open is used to create drivers.
func NewRootCommand(open DriverOpener) *cobra.Command {
	e := &env{v: config.NewViper(), level: new(slog.LevelVar), openDriver: open}

	root := &cobra.Command{
		Use:   "deskdup",
		Short: "Screen duplication capture with retries and continuous frame events",
		Long: `deskdup captures frames from a display through a pluggable platform driver.
One-shot captures retry timeouts, lost access and blank frames within a budget;
auto capture emits a frame event on every tick until it is stopped.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (json or yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("driver", "", "capture driver: display, primary, gdi")
	flags.IntP("screen", "s", 0, "screen index to duplicate")
	flags.Bool("debug", false, "log goroutine and memory samples")
	flags.Bool("only-changed", false, "treat an unchanged screen as a capture timeout")
	_ = e.v.BindPFlag("config", flags.Lookup("config"))
	_ = e.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = e.v.BindPFlag("driver", flags.Lookup("driver"))
	_ = e.v.BindPFlag("screen", flags.Lookup("screen"))
	_ = e.v.BindPFlag("debug", flags.Lookup("debug"))
	_ = e.v.BindPFlag("only_changed", flags.Lookup("only-changed"))

	root.AddCommand(newMonitorsCommand(e), newGrabCommand(e), newWatchCommand(e), newConfigCommand(e))
	return root
}

func (e *env) init(cmd *cobra.Command) error {
	if err := config.ReadFile(e.v, e.v.GetString("config")); err != nil {
		return err
	}
	cfg, err := config.FromViper(e.v)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.level.Set(parseLevel(cfg.LogLevel))
	e.logger = NewLogger(cmd.ErrOrStderr(), e.level)
	e.logger.Debug("config.loaded", "file", e.v.ConfigFileUsed(), "driver", cfg.Driver, "screen", cfg.Screen)
	return nil
}

// open creates the configured driver and an initialised Duplication. The
// returned cleanup closes both.
func (e *env) open() (*capture.Duplication, func(), error) {
	drv, err := e.openDriver(e.cfg.Driver, platform.Options{
		OnlyChanged:  e.cfg.OnlyChanged,
		PollInterval: e.cfg.PollInterval(),
		Logger:       e.logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open driver %q: %w", e.cfg.Driver, err)
	}

	dup := capture.New(drv, e.cfg.Screen,
		capture.WithLogger(e.logger),
		capture.WithCaptureTimeout(e.cfg.CaptureTimeout()),
		capture.WithStatsInterval(e.cfg.StatsInterval()),
	)
	cleanup := func() {
		if err := dup.Close(); err != nil {
			e.logger.Warn("capture.close failed", "error", err)
		}
		if err := drv.Close(); err != nil {
			e.logger.Warn("driver.close failed", "error", err)
		}
	}
	if err := dup.Initialize(); err != nil {
		cleanup()
		return nil, nil, err
	}
	return dup, cleanup, nil
}
