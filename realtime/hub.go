package realtime

import (
	"errors"
	"fmt"
	"sync"
)

const (
	EventOrderNew        = "order:new"
	EventOrderUpdate     = "order:update"
	EventOrderItemsAdded = "order:items-added"
)

const defaultBuffer = 16

var ErrHubClosed = errors.New("realtime hub is closed")

type Event struct {
	Room    string `json:"room"`
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// Publisher fans an event out to everyone subscribed to room.
// Delivery is best effort: nothing is queued for absent subscribers.
type Publisher interface {
	Publish(room, name string, payload any)
}

func RestaurantRoom(restaurantID uint) string {
	return fmt.Sprintf("restaurant:%d", restaurantID)
}

func OrderRoom(orderID uint) string {
	return fmt.Sprintf("order:%d", orderID)
}

type Subscription struct {
	room string
	ch   chan Event
	hub  *Hub
}

func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// Hub is an in-process room based pub/sub. Each subscriber owns a bounded
// buffer; events published while it is full are dropped for that subscriber.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Subscription]struct{}
	buffer int
	closed bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		rooms:  make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

func (h *Hub) Subscribe(room string) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	sub := &Subscription{room: room, ch: make(chan Event, h.buffer), hub: h}
	subs, ok := h.rooms[room]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.rooms[room] = subs
	}
	subs[sub] = struct{}{}
	return sub, nil
}

func (h *Hub) Publish(room, name string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ev := Event{Room: room, Name: name, Payload: payload}
	for sub := range h.rooms[room] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

func (h *Hub) Subscribers(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close drops every subscription and closes their channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, subs := range h.rooms {
		for sub := range subs {
			close(sub.ch)
		}
	}
	h.rooms = make(map[string]map[*Subscription]struct{})
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[sub.room]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(h.rooms, sub.room)
	}
}
