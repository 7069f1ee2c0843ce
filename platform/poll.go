package platform

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/deskdup/domain/capture"
)

type pollDriver struct {
	name    string
	backend backend
	guard   Guard
	opts    Options
	logger  *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

func newPollDriver(name string, b backend, g Guard, opts Options) *pollDriver {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if g == nil {
		g = nopGuard{}
	}
	return &pollDriver{name: name, backend: b, guard: g, opts: opts, logger: opts.Logger.With("driver", name)}
}

func (d *pollDriver) Name() string { return d.name }

func (d *pollDriver) MonitorCount() int { return d.backend.count() }

func (d *pollDriver) Open(screen int) (capture.Handle, error) {
	if d.guard.Locked() {
		return nil, ErrDesktopLocked
	}
	out, err := d.backend.open(screen)
	if err != nil {
		return nil, err
	}
	h := &pollHandle{
		out:   out,
		guard: d.guard,
		gen:   d.guard.Generation(),
		poll:  d.opts.PollInterval,
	}
	if d.opts.OnlyChanged {
		h.change = newChangeDetector()
	}
	d.logger.Debug("platform.open", "screen", screen, "only_changed", d.opts.OnlyChanged)
	return h, nil
}

func (d *pollDriver) Close() error {
	d.closeOnce.Do(func() { d.closeErr = d.guard.Close() })
	return d.closeErr
}

// pollHandle turns a backend output into a duplication session.
type pollHandle struct {
	out    output
	guard  Guard
	gen    uint64
	poll   time.Duration
	change *changeDetector
	closed atomic.Bool
}

func (h *pollHandle) Capture(timeout time.Duration) capture.Outcome {
	if h.closed.Load() {
		return capture.Failure("Failed to acquire next frame: session closed")
	}
	deadline := time.Now().Add(timeout)
	for {
		if h.lost() {
			return capture.AccessLost()
		}
		f, err := h.out.grab()
		if err != nil {
			if !h.out.valid() {
				return capture.AccessLost()
			}
			return capture.Failure(fmt.Sprintf("Failed to acquire next frame: %v", err))
		}
		if h.change == nil || h.change.changed(f.Pix) {
			return capture.Success(f)
		}

		wait := min(h.poll, time.Until(deadline))
		if wait <= 0 {
			return capture.Timeout()
		}
		time.Sleep(wait)
	}
}

func (h *pollHandle) lost() bool {
	return h.guard.Locked() || h.guard.Generation() != h.gen || !h.out.valid()
}

func (h *pollHandle) Close() error {
	h.closed.Store(true)
	return nil
}
