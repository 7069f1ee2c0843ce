package capture

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultCaptureTimeout bounds how long a single capture attempt may wait for
// a new frame.
const DefaultCaptureTimeout = 1000 * time.Millisecond

// Session owns the duplication handle for one screen. Every use of the handle
// holds mu, so one-shot and periodic captures never touch it concurrently.
type Session struct {
	driver  Driver
	screen  int
	timeout time.Duration
	logger  *slog.Logger

	mu          sync.Mutex
	handle      Handle
	initialized bool
	inits       uint64
}

// NewSession returns an uninitialised session for screen.
func NewSession(driver Driver, screen int, timeout time.Duration, logger *slog.Logger) *Session {
	if timeout <= 0 {
		timeout = DefaultCaptureTimeout
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &Session{driver: driver, screen: screen, timeout: timeout, logger: logger}
}

// ScreenIndex returns the screen this session duplicates.
func (s *Session) ScreenIndex() int { return s.screen }

// Initialized reports whether the last Initialize succeeded.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Initialize releases any existing handle and opens a fresh one. It can be
// called repeatedly; on failure the session is left uninitialised.
func (s *Session) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.releaseLocked(); err != nil {
		s.logger.Warn("capture.session release failed", "screen", s.screen, "error", err)
	}
	if s.driver == nil {
		return &InitError{Screen: s.screen, Err: fmt.Errorf("no capture driver configured")}
	}
	if s.screen < 0 {
		return &InitError{Screen: s.screen, Err: fmt.Errorf("screen index must be >= 0")}
	}
	if n := s.driver.MonitorCount(); s.screen >= n {
		return &InitError{Screen: s.screen, Err: fmt.Errorf("screen index %d out of range (monitors=%d)", s.screen, n)}
	}

	h, err := s.driver.Open(s.screen)
	if err != nil {
		return &InitError{Screen: s.screen, Err: err}
	}
	s.handle = h
	s.initialized = true
	s.inits++
	s.logger.Debug("capture.session initialized", "screen", s.screen, "count", s.inits)
	return nil
}

// CaptureOnce performs a single capture attempt.
func (s *Session) CaptureOnce() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized || s.handle == nil {
		return Failure(ErrNotInitialized.Error())
	}
	return s.handle.Capture(s.timeout)
}

// Close releases the handle. The session can be initialised again later.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseLocked()
}

func (s *Session) releaseLocked() error {
	s.initialized = false
	if s.handle == nil {
		return nil
	}
	err := s.handle.Close()
	s.handle = nil
	return err
}
