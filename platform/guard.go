package platform

// Guard watches for desktop states in which a duplication session would be
// invalidated, such as the lock screen or a secure desktop.
type Guard interface {
	// Locked reports whether capture is currently impossible.
	Locked() bool
	// Generation increases every time the desktop becomes locked. A handle
	// opened under an older generation has lost access.
	Generation() uint64
	Close() error
}

type nopGuard struct{}

func (nopGuard) Locked() bool       { return false }
func (nopGuard) Generation() uint64 { return 0 }
func (nopGuard) Close() error       { return nil }
