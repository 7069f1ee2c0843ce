// Package platform provides the capture.Driver implementations used by the
// command line tools. Every driver polls a screenshot backend and adapts its
// result to the duplication outcome model: a vanished or resized output and a
// locked desktop surface as AccessLost, and with change detection enabled an
// unchanged screen surfaces as Timeout.
package platform

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/soocke/deskdup/domain/capture"
)

// Driver names accepted by Open.
const (
	DriverDisplay = "display"
	DriverPrimary = "primary"
	DriverGDI     = "gdi"
)

const defaultPollInterval = 16 * time.Millisecond

var (
	ErrUnknownDriver = errors.New("platform: unknown driver")
	ErrUnsupported   = errors.New("platform: driver not supported on this system")
	ErrDesktopLocked = errors.New("platform: desktop is locked")
)

// Options configures a driver.
type Options struct {
	// OnlyChanged makes Capture wait for the screen content to change and
	// report a timeout when it does not.
	OnlyChanged bool
	// PollInterval is how often an unchanged screen is sampled again.
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Driver is a capture.Driver that owns process-wide resources.
type Driver interface {
	capture.Driver
	io.Closer
	Name() string
}

// Names lists the drivers Open understands.
func Names() []string { return []string{DriverDisplay, DriverPrimary, DriverGDI} }

// Open returns the named driver. An empty name selects DriverDisplay.
func Open(name string, opts Options) (Driver, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}

	var b backend
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DriverDisplay:
		name, b = DriverDisplay, displayBackend{}
	case DriverPrimary:
		b = primaryBackend{}
	case DriverGDI:
		gb, err := newGDIBackend()
		if err != nil {
			return nil, err
		}
		b = gb
	default:
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownDriver, name, strings.Join(Names(), ", "))
	}

	return newPollDriver(name, b, newGuard(opts.Logger), opts), nil
}
