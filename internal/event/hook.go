// Package event provides typed listener lists for conversion lifecycle
// events.
package event

import (
	"context"
	"sync"
)

// Listener handles one event. A non-nil error stops emission.
type Listener[E any] func(ctx context.Context, e E) error

// Hook is an ordered list of listeners for events of type E. The zero value
// is ready to use.
type Hook[E any] struct {
	mu        sync.Mutex
	nextID    int
	listeners []entry[E]
}

type entry[E any] struct {
	id int
	fn Listener[E]
}

// On registers fn and returns a function that removes it. Removing twice is
// a no-op.
func (h *Hook[E]) On(fn Listener[E]) (remove func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.listeners = append(h.listeners, entry[E]{id: id, fn: fn})
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, l := range h.listeners {
			if l.id == id {
				h.listeners = append(h.listeners[:i:i], h.listeners[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of registered listeners.
func (h *Hook[E]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// Emit calls each listener in registration order, waiting for each to
// return. The first error is returned and later listeners are skipped.
// Listeners registered during emission are not called for this event.
func (h *Hook[E]) Emit(ctx context.Context, e E) error {
	h.mu.Lock()
	snapshot := make([]entry[E], len(h.listeners))
	copy(snapshot, h.listeners)
	h.mu.Unlock()

	for _, l := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.fn(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
