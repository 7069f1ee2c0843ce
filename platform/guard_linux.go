//go:build linux

package platform

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
)

const (
	screenSaverName   = "org.freedesktop.ScreenSaver"
	screenSaverPath   = dbus.ObjectPath("/org/freedesktop/ScreenSaver")
	screenSaverIface  = "org.freedesktop.ScreenSaver"
	screenSaverSignal = "ActiveChanged"
)

// screenSaverGuard follows the session screensaver over D-Bus. When no
// session bus or screensaver service is reachable the nop guard is used.
type screenSaverGuard struct {
	conn    *dbus.Conn
	signals chan *dbus.Signal
	logger  *slog.Logger

	locked     atomic.Bool
	generation atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func newGuard(logger *slog.Logger) Guard {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		logger.Debug("platform.guard session bus unavailable", "error", err)
		return nopGuard{}
	}

	var active bool
	call := conn.Object(screenSaverName, screenSaverPath).Call(screenSaverIface+".GetActive", 0)
	if err := call.Store(&active); err != nil {
		logger.Debug("platform.guard screensaver unavailable", "error", err)
		_ = conn.Close()
		return nopGuard{}
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(screenSaverPath),
		dbus.WithMatchInterface(screenSaverIface),
		dbus.WithMatchMember(screenSaverSignal),
	); err != nil {
		logger.Debug("platform.guard signal match failed", "error", err)
		_ = conn.Close()
		return nopGuard{}
	}

	g := &screenSaverGuard{
		conn:    conn,
		signals: make(chan *dbus.Signal, 8),
		logger:  logger,
		done:    make(chan struct{}),
	}
	g.locked.Store(active)
	conn.Signal(g.signals)
	go g.watch()
	logger.Debug("platform.guard watching screensaver", "active", active)
	return g
}

// watch runs until the connection is closed, which closes the signal channel.
func (g *screenSaverGuard) watch() {
	defer close(g.done)
	for sig := range g.signals {
		if sig == nil || sig.Name != screenSaverIface+"."+screenSaverSignal || len(sig.Body) == 0 {
			continue
		}
		active, ok := sig.Body[0].(bool)
		if !ok {
			continue
		}
		if active {
			g.generation.Add(1)
		}
		g.locked.Store(active)
		g.logger.Info("platform.guard screensaver changed", "active", active)
	}
}

func (g *screenSaverGuard) Locked() bool       { return g.locked.Load() }
func (g *screenSaverGuard) Generation() uint64 { return g.generation.Load() }

func (g *screenSaverGuard) Close() error {
	g.closeOnce.Do(func() {
		g.closeErr = g.conn.Close()
		<-g.done
	})
	return g.closeErr
}
