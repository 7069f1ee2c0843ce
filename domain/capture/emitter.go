package capture

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"
)

// EventFrame is emitted for every frame produced by auto capture.
const EventFrame = "frame"

// Listener receives an emitted frame.
type Listener func(Frame)

type subscription struct {
	id   string
	fn   Listener
	once bool
}

// Emitter is a subscriber registry keyed by event name. Listeners run in
// registration order on the goroutine that calls Emit.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[string][]subscription
	logger    *slog.Logger
}

// NewEmitter returns an empty registry. A nil logger discards panic reports.
func NewEmitter(logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = discardLogger()
	}
	return &Emitter{listeners: make(map[string][]subscription), logger: logger}
}

// On registers fn for event and returns an ID usable with Off.
func (e *Emitter) On(event string, fn Listener) string {
	return e.add(event, fn, false)
}

// Once registers fn to run for the next emission of event only.
func (e *Emitter) Once(event string, fn Listener) string {
	return e.add(event, fn, true)
}

func (e *Emitter) add(event string, fn Listener, once bool) string {
	if fn == nil {
		return ""
	}
	id := uuid.NewString()
	e.mu.Lock()
	e.listeners[event] = append(e.listeners[event], subscription{id: id, fn: fn, once: once})
	e.mu.Unlock()
	return id
}

// Off removes the listener with the given ID. It reports whether one was found.
func (e *Emitter) Off(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for event, subs := range e.listeners {
		for i, sub := range subs {
			if sub.id == id {
				e.listeners[event] = removeAt(subs, i)
				return true
			}
		}
	}
	return false
}

// RemoveAll drops every listener registered for event.
func (e *Emitter) RemoveAll(event string) {
	e.mu.Lock()
	delete(e.listeners, event)
	e.mu.Unlock()
}

// ListenerCount returns how many listeners are registered for event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[event])
}

// Emit delivers f to the listeners of event and returns how many ran. Once
// listeners are removed before they are invoked. The first listener gets f
// itself, later ones get private copies so no two receivers share pixels.
// A panicking listener is logged and does not stop delivery to the rest.
func (e *Emitter) Emit(event string, f Frame) int {
	e.mu.Lock()
	subs := e.listeners[event]
	snapshot := make([]subscription, len(subs))
	copy(snapshot, subs)
	kept := subs[:0]
	for _, sub := range subs {
		if !sub.once {
			kept = append(kept, sub)
		}
	}
	if len(kept) == 0 {
		delete(e.listeners, event)
	} else {
		e.listeners[event] = kept
	}
	e.mu.Unlock()

	// Copies are taken before any listener can touch f.
	payloads := make([]Frame, len(snapshot))
	for i := range payloads {
		if i == 0 {
			payloads[i] = f
		} else {
			payloads[i] = f.Clone()
		}
	}
	for i, sub := range snapshot {
		e.safeCall(event, sub, payloads[i])
	}
	return len(snapshot)
}

func (e *Emitter) safeCall(event string, sub subscription, f Frame) {
	var pc panics.Catcher
	pc.Try(func() { sub.fn(f) })
	if r := pc.Recovered(); r != nil {
		e.logger.Error("capture.listener panicked",
			"event", event,
			"listener", sub.id,
			"error", r.Value,
			"stack", string(r.Stack),
		)
	}
}

func removeAt(subs []subscription, i int) []subscription {
	out := make([]subscription, 0, len(subs)-1)
	out = append(out, subs[:i]...)
	return append(out, subs[i+1:]...)
}
