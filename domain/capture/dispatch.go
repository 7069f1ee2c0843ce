package capture

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const slowDeliveryThreshold = 50 * time.Millisecond

// dispatcher is the asynchronous task queue frame events are delivered
// through. Tasks run one at a time, in enqueue order, on a single goroutine
// that never belongs to the capture loop. Enqueue never blocks.
type dispatcher struct {
	logger *slog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []func()
	closed bool

	closeOnce sync.Once
	wg        sync.WaitGroup

	lastSlowLog atomic.Int64
}

func newDispatcher(logger *slog.Logger) *dispatcher {
	q := &dispatcher{logger: logger}
	q.cond = sync.NewCond(&q.mu)
	q.wg.Add(1)
	go q.loop()
	return q
}

// Enqueue appends task to the queue. It reports false once the queue is closed.
func (q *dispatcher) Enqueue(task func()) bool {
	if task == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, task)
	q.cond.Signal()
	return true
}

// Len returns the number of tasks waiting to run.
func (q *dispatcher) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Close stops the queue after the running task and discards waiting tasks.
// It does not wait, so it is safe to call from inside a task; use Wait for
// that.
func (q *dispatcher) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		dropped := len(q.tasks)
		q.tasks = nil
		q.cond.Broadcast()
		q.mu.Unlock()
		if dropped > 0 {
			q.logger.Debug("capture.dispatch closed with pending tasks", "dropped", dropped)
		}
	})
}

// Wait blocks until the delivery goroutine has exited.
func (q *dispatcher) Wait() { q.wg.Wait() }

func (q *dispatcher) loop() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		backlog := len(q.tasks)
		q.mu.Unlock()

		start := time.Now()
		task()
		if d := time.Since(start); d > slowDeliveryThreshold && shouldLogEvery(&q.lastSlowLog, time.Second) {
			q.logger.Debug("capture.dispatch slow delivery", "duration", d, "backlog", backlog)
		}
	}
}

// shouldLogEvery rate limits a log site to once per period.
func shouldLogEvery(last *atomic.Int64, period time.Duration) bool {
	if last == nil || period <= 0 {
		return true
	}

	now := time.Now().UnixNano()
	for {
		prev := last.Load()
		if prev != 0 && time.Duration(now-prev) < period {
			return false
		}
		if last.CompareAndSwap(prev, now) {
			return true
		}
	}
}
