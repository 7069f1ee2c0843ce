package capture

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// scriptedDriver hands out outcomes in order, then repeats fallback.
type scriptedDriver struct {
	mu        sync.Mutex
	monitors  int
	outcomes  []Outcome
	fallback  Outcome
	panicOn   bool
	failOpens map[int]error // open number (1-based) -> error

	// When hold is set, Capture signals entered and blocks until hold is
	// closed. Both must be set before the driver is used.
	entered chan struct{}
	hold    chan struct{}

	opens    int
	captures int
	closes   int
}

func newScriptedDriver(outcomes ...Outcome) *scriptedDriver {
	return &scriptedDriver{monitors: 1, outcomes: outcomes, fallback: Timeout()}
}

func (d *scriptedDriver) MonitorCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.monitors
}

func (d *scriptedDriver) Open(int) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens++
	if err := d.failOpens[d.opens]; err != nil {
		return nil, err
	}
	return &scriptedHandle{d: d}, nil
}

func (d *scriptedDriver) counts() (opens, captures, closes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens, d.captures, d.closes
}

type scriptedHandle struct{ d *scriptedDriver }

func (h *scriptedHandle) Capture(time.Duration) Outcome {
	if h.d.hold != nil {
		select {
		case h.d.entered <- struct{}{}:
		default:
		}
		<-h.d.hold
	}
	h.d.mu.Lock()
	defer h.d.mu.Unlock()
	h.d.captures++
	if h.d.panicOn {
		panic("driver exploded")
	}
	if len(h.d.outcomes) == 0 {
		return h.d.fallback
	}
	o := h.d.outcomes[0]
	h.d.outcomes = h.d.outcomes[1:]
	return o
}

func (h *scriptedHandle) Close() error {
	h.d.mu.Lock()
	defer h.d.mu.Unlock()
	h.d.closes++
	return nil
}

// manualScheduler lets a test drive ticks one at a time.
type manualScheduler struct {
	mu      sync.Mutex
	starts  int
	opts    PeriodicOptions
	capture CaptureFunc
	onTick  TickFunc
	stopped bool
	ended   bool
}

func (m *manualScheduler) RunPeriodic(opts PeriodicOptions, capture CaptureFunc, onTick TickFunc) Stopper {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	m.opts = opts
	m.capture = capture
	m.onTick = onTick
	m.stopped = false
	m.ended = false
	return manualStopper{m}
}

// fire runs one tick and reports whether the loop keeps going.
func (m *manualScheduler) fire() bool {
	m.mu.Lock()
	if m.stopped || m.ended || m.capture == nil {
		m.mu.Unlock()
		return false
	}
	capture, onTick := m.capture, m.onTick
	m.mu.Unlock()

	if onTick(capture()) {
		return true
	}
	m.mu.Lock()
	m.ended = true
	m.mu.Unlock()
	return false
}

func (m *manualScheduler) startCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

type manualStopper struct{ m *manualScheduler }

func (s manualStopper) Stop() {
	s.m.mu.Lock()
	s.m.stopped = true
	s.m.mu.Unlock()
}

func testFrame(tag byte) Frame {
	pix := make([]byte, 16)
	for i := range pix {
		pix[i] = tag
	}
	return Frame{Pix: pix, Width: 2, Height: 2}
}

func zeroFrame() Frame { return Frame{Pix: make([]byte, 16), Width: 2, Height: 2} }

var errNoDisplay = errors.New("no display attached")

// newTestDuplication returns an initialised Duplication over driver.
func newTestDuplication(t *testing.T, driver Driver, opts ...Option) *Duplication {
	t.Helper()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	d := New(driver, 0, opts...)
	t.Cleanup(func() { _ = d.Close() })
	if err := d.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return d
}

// flush waits until every task queued so far has been delivered.
func flush(t *testing.T, d *Duplication) {
	t.Helper()
	done := make(chan struct{})
	if !d.queue.Enqueue(func() { close(done) }) {
		t.Fatal("queue closed")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for queue to drain")
	}
}

// waitFor polls cond until it holds or timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", msg)
}
