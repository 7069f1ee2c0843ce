package capture

import (
	"errors"
	"testing"
)

func TestSession_CaptureBeforeInitialize(t *testing.T) {
	s := NewSession(newScriptedDriver(Success(testFrame(1))), 0, 0, nil)
	out := s.CaptureOnce()
	if out.Kind != OutcomeError || out.Message != ErrNotInitialized.Error() {
		t.Fatalf("expected not-initialised error outcome, got %+v", out)
	}
}

func TestSession_NilDriver(t *testing.T) {
	s := NewSession(nil, 0, 0, nil)
	if err := s.Initialize(); !errors.Is(err, ErrInit) {
		t.Fatalf("expected ErrInit, got %v", err)
	}
	if s.Initialized() {
		t.Fatal("session must stay uninitialised")
	}
}

func TestSession_OpenFailureLeavesSessionClosed(t *testing.T) {
	drv := newScriptedDriver()
	drv.failOpens = map[int]error{2: errNoDisplay}
	s := NewSession(drv, 0, 0, nil)

	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}
	err := s.Initialize()
	if !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected driver error, got %v", err)
	}
	if s.Initialized() {
		t.Fatal("failed Initialize must leave the session uninitialised")
	}
	if _, _, closes := drv.counts(); closes != 1 {
		t.Fatalf("previous handle should be released, closes=%d", closes)
	}
}

func TestSession_NegativeScreen(t *testing.T) {
	s := NewSession(newScriptedDriver(), -1, 0, nil)
	var ie *InitError
	if err := s.Initialize(); !errors.As(err, &ie) || ie.Screen != -1 {
		t.Fatalf("expected *InitError, got %v", err)
	}
}

func TestMonitorCount(t *testing.T) {
	drv := newScriptedDriver()
	drv.monitors = 3
	if n := MonitorCount(drv); n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
	if n := MonitorCount(nil); n != 0 {
		t.Fatalf("expected 0 for nil driver, got %d", n)
	}
}
