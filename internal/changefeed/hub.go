// Package changefeed fans out row-level article changes to live subscribers
// such as the websocket stream endpoint.
package changefeed

import (
	"sync"

	"blog-enhancer/internal/models"

	"github.com/google/uuid"
)

// EventType names the kind of row change
type EventType string

const (
	Insert EventType = "INSERT"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
)

// Event describes exactly one committed row change. Article is nil for
// deletes; ID is always set.
type Event struct {
	Type    EventType       `json:"type"`
	ID      uuid.UUID       `json:"id"`
	Article *models.Article `json:"article,omitempty"`
}

// Publisher is what the store needs from a change feed
type Publisher interface {
	Publish(Event)
}

// Hub is an in-process change feed. Publish never blocks: a subscriber whose
// buffer is full misses the event.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]struct{}
	bufferSize  int
}

// Subscription receives events until Close is called
type Subscription struct {
	hub    *Hub
	events chan Event
	once   sync.Once
}

// NewHub creates a hub whose subscribers buffer up to bufferSize events
func NewHub(bufferSize int) *Hub {
	if bufferSize < 1 {
		bufferSize = 16
	}
	return &Hub{
		subscribers: make(map[*Subscription]struct{}),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a new subscriber
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{hub: h, events: make(chan Event, h.bufferSize)}

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Publish delivers event to every subscriber with buffer room
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers {
		select {
		case sub.events <- event:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Events is the receive side of the subscription; it is closed by Close
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subscribers, s)
		s.hub.mu.Unlock()
		close(s.events)
	})
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(Event) {}
