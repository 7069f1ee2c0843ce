//go:build windows

package platform

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	desktopSwitchDesktop = 0x0100
	guardPollInterval    = 250 * time.Millisecond
)

var (
	procOpenInputDesktop = modUser32.NewProc("OpenInputDesktop")
	procSwitchDesktop    = modUser32.NewProc("SwitchDesktop")
	procCloseDesktop     = modUser32.NewProc("CloseDesktop")
)

// inputDesktopGuard polls the input desktop. The lock screen, UAC prompts and
// other secure desktops cannot be opened or switched to from a user process.
type inputDesktopGuard struct {
	logger *slog.Logger

	locked     atomic.Bool
	generation atomic.Uint64

	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newGuard(logger *slog.Logger) Guard {
	if err := procOpenInputDesktop.Find(); err != nil {
		logger.Debug("platform.guard input desktop unavailable", "error", err)
		return nopGuard{}
	}
	g := &inputDesktopGuard{logger: logger, stop: make(chan struct{})}
	g.locked.Store(secureDesktopActive())
	g.wg.Add(1)
	go g.poll()
	return g
}

func (g *inputDesktopGuard) poll() {
	defer g.wg.Done()
	t := time.NewTicker(guardPollInterval)
	defer t.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-t.C:
		}
		locked := secureDesktopActive()
		if prev := g.locked.Swap(locked); prev != locked {
			if locked {
				g.generation.Add(1)
			}
			g.logger.Info("platform.guard input desktop changed", "locked", locked)
		}
	}
}

func secureDesktopActive() bool {
	h, _, _ := procOpenInputDesktop.Call(0, 0, desktopSwitchDesktop)
	if h == 0 {
		return true
	}
	defer procCloseDesktop.Call(h)
	ok, _, _ := procSwitchDesktop.Call(h)
	return ok == 0
}

func (g *inputDesktopGuard) Locked() bool       { return g.locked.Load() }
func (g *inputDesktopGuard) Generation() uint64 { return g.generation.Load() }

func (g *inputDesktopGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stop)
		g.wg.Wait()
	})
	return nil
}
