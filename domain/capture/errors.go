package capture

import (
	"errors"
	"fmt"
)

var (
	ErrInit           = errors.New("capture: session initialization failed")
	ErrTimeout        = errors.New("capture: timeout reached")
	ErrAccessLost     = errors.New("capture: access lost")
	ErrCapture        = errors.New("capture: platform capture failed")
	ErrSessionBusy    = errors.New("capture: session is busy with auto capture")
	ErrNotInitialized = errors.New("capture: session not initialized")
	ErrInvalidDelay   = errors.New("capture: auto capture delay must be positive")
	ErrClosed         = errors.New("capture: duplication closed")
)

// InitError is returned when a duplication session could not be created for
// a screen. It matches both ErrInit and the driver's cause.
type InitError struct {
	Screen int
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("capture: initialize screen %d: %v", e.Screen, e.Err)
}

func (e *InitError) Unwrap() []error { return []error{ErrInit, e.Err} }

// CaptureError carries a platform failure message through unchanged.
type CaptureError struct {
	Message string
}

func (e *CaptureError) Error() string { return e.Message }

func (e *CaptureError) Is(target error) bool { return target == ErrCapture }

// ExhaustedError is returned when the retry budget ran out while a transient
// condition (ErrTimeout or ErrAccessLost) persisted.
type ExhaustedError struct {
	Cause    error
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v after %d attempts", e.Cause, e.Attempts)
}

func (e *ExhaustedError) Unwrap() error { return e.Cause }
