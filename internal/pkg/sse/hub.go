package sse

import (
	"sync"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Channel string
	Event   string
	Data    interface{}
}

// CompanyChannel carries the live duty board of one company.
func CompanyChannel(companyKey string) string {
	return "company:" + companyKey
}

// UserChannel carries events addressed to a single user.
func UserChannel(userID string) string {
	return "user:" + userID
}

// Hub manages SSE subscribers and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a subscriber on every given channel and returns a
// single event channel plus its cleanup function.
func (h *Hub) Subscribe(channels ...string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)
	for _, channel := range channels {
		if h.subscribers[channel] == nil {
			h.subscribers[channel] = make(map[chan Event]struct{})
		}
		h.subscribers[channel][ch] = struct{}{}
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, channel := range channels {
				delete(h.subscribers[channel], ch)
				if len(h.subscribers[channel]) == 0 {
					delete(h.subscribers, channel)
				}
			}
			close(ch)
		})
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a channel
func (h *Hub) Publish(channel string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.Channel = channel
	for ch := range h.subscribers[channel] {
		select {
		case ch <- event:
		default:
			// Skip if channel is full (non-blocking to prevent deadlock)
		}
	}
}

// SubscriberCount returns the number of active subscribers for a channel
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}
