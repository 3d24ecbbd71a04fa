package progress

import (
	"log"
	"sync"
)

// subscriberBuffer is the per-subscriber channel capacity. A slow reader
// loses newest events past this point rather than stalling the publisher.
const subscriberBuffer = 64

// Hub routes events to subscribers by client id. Publishing to an id with no
// subscribers drops the event; there is no replay.
type Hub struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string][]chan Event)}
}

// Subscribe registers a new subscriber for clientID and returns its channel
// plus an unsubscribe function. The channel is closed on unsubscribe.
func (h *Hub) Subscribe(clientID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[clientID] = append(h.subs[clientID], ch)
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			chans := h.subs[clientID]
			for i, c := range chans {
				if c == ch {
					h.subs[clientID] = append(chans[:i], chans[i+1:]...)
					break
				}
			}
			if len(h.subs[clientID]) == 0 {
				delete(h.subs, clientID)
			}
			close(ch)
		})
	}
	return ch, unsubscribe
}

// Publish delivers an event to every current subscriber of clientID. A full
// subscriber buffer drops the event for that subscriber only.
func (h *Hub) Publish(clientID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[clientID] {
		select {
		case ch <- event:
		default:
			log.Printf("[progress] dropping event for slow subscriber %s", clientID)
		}
	}
}

// SubscriberCount reports how many subscribers an id currently has.
func (h *Hub) SubscriberCount(clientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[clientID])
}
