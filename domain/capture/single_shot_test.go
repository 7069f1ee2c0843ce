package capture

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetFrame_RecoversFromMixedFailures(t *testing.T) {
	want := testFrame(9)
	drv := newScriptedDriver(Timeout(), AccessLost(), Timeout(), Success(zeroFrame()), Success(want))
	d := newTestDuplication(t, drv)

	f, err := d.GetFrame(5)
	if err != nil {
		t.Fatalf("GetFrame: %v", err)
	}
	if f.Pix[0] != 9 {
		t.Fatalf("expected the real frame, got first byte %d", f.Pix[0])
	}
	opens, captures, _ := drv.counts()
	if opens-1 != 1 {
		t.Fatalf("expected 1 re-initialisation, got %d", opens-1)
	}
	if captures != 5 {
		t.Fatalf("expected 5 capture attempts, got %d", captures)
	}
	if s := d.Stats(); s.Reinitializations != 1 || s.Timeouts != 2 || s.AccessLost != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestGetFrame_FirstAttemptSucceeds(t *testing.T) {
	drv := newScriptedDriver(Success(testFrame(1)))
	d := newTestDuplication(t, drv)

	if _, err := d.GetFrame(DefaultRetryCount); err != nil {
		t.Fatalf("GetFrame: %v", err)
	}
	if _, captures, _ := drv.counts(); captures != 1 {
		t.Fatalf("expected 1 attempt, got %d", captures)
	}
}

func TestGetFrame_AttemptsBoundedByRetryCount(t *testing.T) {
	for n := 0; n <= 6; n++ {
		drv := newScriptedDriver() // falls back to Timeout forever
		d := newTestDuplication(t, drv)

		_, err := d.GetFrame(n)
		if !errors.Is(err, ErrTimeout) {
			t.Fatalf("n=%d: expected ErrTimeout, got %v", n, err)
		}
		var ex *ExhaustedError
		if !errors.As(err, &ex) || ex.Attempts != n+1 {
			t.Fatalf("n=%d: expected ExhaustedError with %d attempts, got %v", n, n+1, err)
		}
		if _, captures, _ := drv.counts(); captures != n+1 {
			t.Fatalf("n=%d: expected %d attempts, got %d", n, n+1, captures)
		}
	}
}

func TestGetFrame_EachAccessLostReinitializes(t *testing.T) {
	const n = 3
	outcomes := make([]Outcome, 0, n+1)
	for range n {
		outcomes = append(outcomes, AccessLost())
	}
	outcomes = append(outcomes, Success(testFrame(4)))
	drv := newScriptedDriver(outcomes...)
	d := newTestDuplication(t, drv)

	if _, err := d.GetFrame(n); err != nil {
		t.Fatalf("GetFrame: %v", err)
	}
	opens, _, closes := drv.counts()
	if opens-1 != n {
		t.Fatalf("expected %d re-initialisations, got %d", n, opens-1)
	}
	if closes != n {
		t.Fatalf("expected each old handle to be released, closes=%d", closes)
	}
}

func TestGetFrame_AccessLostExhausted(t *testing.T) {
	drv := newScriptedDriver(AccessLost())
	d := newTestDuplication(t, drv)

	_, err := d.GetFrame(0)
	if !errors.Is(err, ErrAccessLost) {
		t.Fatalf("expected ErrAccessLost, got %v", err)
	}
	if opens, _, _ := drv.counts(); opens != 1 {
		t.Fatalf("no budget left, expected no re-initialisation, opens=%d", opens)
	}
}

func TestGetFrame_ErrorIsNotRetried(t *testing.T) {
	drv := newScriptedDriver(Failure("Failed to acquire next frame: 0x887A0001"), Success(testFrame(1)))
	d := newTestDuplication(t, drv)

	_, err := d.GetFrame(5)
	var ce *CaptureError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CaptureError, got %v", err)
	}
	if ce.Message != "Failed to acquire next frame: 0x887A0001" {
		t.Fatalf("message altered: %q", ce.Message)
	}
	if _, captures, _ := drv.counts(); captures != 1 {
		t.Fatalf("expected a single attempt, got %d", captures)
	}
}

func TestGetFrame_BlankFrameAcceptedWhenBudgetExhausted(t *testing.T) {
	drv := newScriptedDriver(Success(zeroFrame()), Success(zeroFrame()))
	d := newTestDuplication(t, drv)

	f, err := d.GetFrame(1)
	if err != nil {
		t.Fatalf("GetFrame: %v", err)
	}
	if !looksBlank(f) {
		t.Fatal("expected the blank frame to be returned")
	}
	if _, captures, _ := drv.counts(); captures != 2 {
		t.Fatalf("expected 2 attempts, got %d", captures)
	}
}

func TestGetFrame_NegativeRetryCountMeansSingleAttempt(t *testing.T) {
	drv := newScriptedDriver()
	d := newTestDuplication(t, drv)

	if _, err := d.GetFrame(-3); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if _, captures, _ := drv.counts(); captures != 1 {
		t.Fatalf("expected 1 attempt, got %d", captures)
	}
}

func TestGetFrame_ReinitializeFailureIsReturned(t *testing.T) {
	drv := newScriptedDriver(AccessLost())
	drv.failOpens = map[int]error{2: errNoDisplay}
	d := newTestDuplication(t, drv)

	_, err := d.GetFrame(5)
	if !errors.Is(err, ErrInit) || !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected init error wrapping the driver error, got %v", err)
	}
	if d.Initialized() {
		t.Fatal("session should be uninitialised after a failed re-initialisation")
	}
	if _, err := d.GetFrame(5); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized afterwards, got %v", err)
	}
}

func TestGetFrame_RequiresInitialize(t *testing.T) {
	d := New(newScriptedDriver(), 0, WithLogger(discardLogger()))
	defer d.Close()

	if _, err := d.GetFrame(1); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestGetFrameContext_Cancelled(t *testing.T) {
	drv := newScriptedDriver()
	d := newTestDuplication(t, drv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.GetFrameContext(ctx, 5); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, captures, _ := drv.counts(); captures != 0 {
		t.Fatalf("expected no attempts, got %d", captures)
	}
}

func TestGetFrameAsync_DeliversExactlyOnce(t *testing.T) {
	drv := newScriptedDriver(Timeout(), Success(testFrame(3)))
	d := newTestDuplication(t, drv)

	ch := d.GetFrameAsync(context.Background(), 2)
	select {
	case res := <-ch:
		if res.Err != nil {
			t.Fatalf("unexpected error %v", res.Err)
		}
		if res.Frame.Pix[0] != 3 {
			t.Fatalf("wrong frame %d", res.Frame.Pix[0])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for async result")
	}
	select {
	case res := <-ch:
		t.Fatalf("second delivery %+v", res)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestGetFrameAsync_ReportsFailure(t *testing.T) {
	d := newTestDuplication(t, newScriptedDriver())

	res := <-d.GetFrameAsync(context.Background(), 1)
	if !errors.Is(res.Err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", res.Err)
	}
}

func TestGetFrameAsync_RecoversPanic(t *testing.T) {
	drv := newScriptedDriver()
	drv.panicOn = true
	d := newTestDuplication(t, drv)

	select {
	case res := <-d.GetFrameAsync(context.Background(), 1):
		if res.Err == nil {
			t.Fatal("expected an error from the panicking driver")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for async result")
	}

	// The session lock must have been released.
	drv.mu.Lock()
	drv.panicOn = false
	drv.outcomes = []Outcome{Success(testFrame(2))}
	drv.mu.Unlock()
	if _, err := d.GetFrame(0); err != nil {
		t.Fatalf("GetFrame after panic: %v", err)
	}
}

func TestGetFrameAsync_AfterClose(t *testing.T) {
	d := newTestDuplication(t, newScriptedDriver())
	_ = d.Close()

	res := <-d.GetFrameAsync(context.Background(), 1)
	if !errors.Is(res.Err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", res.Err)
	}
}

func TestInitialize_InvalidScreen(t *testing.T) {
	drv := newScriptedDriver()
	d := New(drv, 3, WithLogger(discardLogger()))
	defer d.Close()

	err := d.Initialize()
	var ie *InitError
	if !errors.As(err, &ie) || ie.Screen != 3 {
		t.Fatalf("expected *InitError for screen 3, got %v", err)
	}
	if !errors.Is(err, ErrInit) {
		t.Fatal("expected errors.Is(err, ErrInit)")
	}
	if opens, _, _ := drv.counts(); opens != 0 {
		t.Fatalf("driver should not be opened, opens=%d", opens)
	}
}

func TestInitialize_ReleasesPreviousHandle(t *testing.T) {
	drv := newScriptedDriver()
	d := newTestDuplication(t, drv)

	if err := d.Initialize(); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	opens, _, closes := drv.counts()
	if opens != 2 || closes != 1 {
		t.Fatalf("expected 2 opens and 1 close, got %d/%d", opens, closes)
	}
}

func TestClose_RejectsFurtherUse(t *testing.T) {
	drv := newScriptedDriver()
	d := newTestDuplication(t, drv)

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, _, closes := drv.counts(); closes != 1 {
		t.Fatalf("expected handle closed once, got %d", closes)
	}
	if _, err := d.GetFrame(1); !errors.Is(err, ErrClosed) {
		t.Fatalf("GetFrame: expected ErrClosed, got %v", err)
	}
	if err := d.Initialize(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Initialize: expected ErrClosed, got %v", err)
	}
	if err := d.StartAutoCapture(time.Millisecond, false); !errors.Is(err, ErrClosed) {
		t.Fatalf("StartAutoCapture: expected ErrClosed, got %v", err)
	}
}
