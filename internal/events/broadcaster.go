// Package events provides typed change notifications between the stores and
// any interested observer. Receipt of an event means "re-fetch and re-render";
// events carry no payload and no diff information.
package events

import "sync"

// Event identifies which part of the store changed.
type Event int

// The full event set.
const (
	CategoriesChanged Event = iota
	ExpensesChanged
)

func (e Event) String() string {
	switch e {
	case CategoriesChanged:
		return "categories changed"
	case ExpensesChanged:
		return "expenses changed"
	default:
		return "unknown"
	}
}

// Handler receives published events.
type Handler func(Event)

// Broadcaster is a simple publish mechanism: no queuing, no back-pressure.
// A handler registered after an event was published never sees it; this is
// an accepted limitation.
type Broadcaster struct {
	handlers map[int]Handler
	next     int
	mu       sync.Mutex
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		handlers: make(map[int]Handler),
	}
}

// Subscribe registers a handler and returns a function that removes it.
func (b *Broadcaster) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.handlers[id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Publish delivers the event synchronously to every registered handler.
func (b *Broadcaster) Publish(e Event) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}
