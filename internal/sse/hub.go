package sse

import (
	"fmt"
	"io"
	"sync"
)

// Event represents a server-sent event.
type Event struct {
	Type string // e.g. "tick"
	Data string // JSON payload
}

// WriteTo writes the event in text/event-stream framing.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, e.Data)
	return int64(n), err
}

// Hub fans one stream of events out to every connected client. The most
// recent event is remembered so late subscribers start from current state.
type Hub struct {
	mu      sync.Mutex
	clients map[chan Event]struct{}
	last    *Event
	closed  bool
}

// New creates a new SSE Hub.
func New() *Hub {
	return &Hub{
		clients: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a listener. The channel receives the last published
// event first, if any. The returned function unsubscribes.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.clients[ch] = struct{}{}
	if h.last != nil {
		ch <- *h.last
	}
	h.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, ch)
			h.mu.Unlock()
		})
	}
	return ch, unsub
}

// Publish sends an event to all subscribers. Slow clients whose buffer is
// full miss the event.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = &event
	for ch := range h.clients {
		select {
		case ch <- event:
		default:
		}
	}
}

// Last returns the most recently published event.
func (h *Hub) Last() (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return Event{}, false
	}
	return *h.last, true
}

// Len returns the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close ends every subscription by closing its channel. Later subscribers get
// an already closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}
