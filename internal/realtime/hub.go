package realtime

import (
	"sync"

	"github.com/google/uuid"

	"viabus/pkg/logger"
)

const subscriberBuffer = 16

// Subscriber is one live listener on a route's seat map. Events arrive on
// Events in publish order; the channel closes when the hub evicts the
// subscriber, after which the client should re-sync from the availability
// endpoint and subscribe again.
type Subscriber struct {
	ID      uuid.UUID
	RouteID uuid.UUID
	Events  chan SeatUpdateEvent
}

// Hub routes seat events to in-process subscribers grouped by route. A
// subscriber that stops draining its channel is evicted rather than letting
// it stall delivery to everyone else on the route.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[*Subscriber]struct{}
	log         *logger.Logger
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[*Subscriber]struct{}),
		log:         logger.GetDefault(),
	}
}

// Subscribe registers a listener for one route.
func (h *Hub) Subscribe(routeID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		ID:      uuid.New(),
		RouteID: routeID,
		Events:  make(chan SeatUpdateEvent, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[routeID] == nil {
		h.subscribers[routeID] = make(map[*Subscriber]struct{})
	}
	h.subscribers[routeID][sub] = struct{}{}
	return sub
}

// Unsubscribe detaches the listener and closes its channel. Safe to call
// after the hub already evicted it.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *Subscriber) {
	set, ok := h.subscribers[sub.RouteID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subscribers, sub.RouteID)
	}
	close(sub.Events)
}

// Publish delivers the event to every subscriber of its route. Subscribers
// whose buffers are full are evicted so that the rest keep receiving events
// in order.
func (h *Hub) Publish(event SeatUpdateEvent) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subscribers[event.RouteID]
	if !ok {
		return 0
	}

	delivered := 0
	var evicted []*Subscriber
	for sub := range set {
		select {
		case sub.Events <- event:
			delivered++
		default:
			evicted = append(evicted, sub)
		}
	}
	for _, sub := range evicted {
		h.removeLocked(sub)
	}
	return delivered
}

// SubscriberCount returns how many listeners watch the route.
func (h *Hub) SubscriberCount(routeID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[routeID])
}

// Stats reports listener counts per route.
func (h *Hub) Stats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := make(map[string]int, len(h.subscribers))
	for routeID, set := range h.subscribers {
		stats[routeID.String()] = len(set)
	}
	return stats
}

// Close evicts every subscriber. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subscribers {
		for sub := range set {
			close(sub.Events)
		}
	}
	h.subscribers = make(map[uuid.UUID]map[*Subscriber]struct{})
}
