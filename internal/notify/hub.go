package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// subscriberBuffer bounds each subscriber's channel. A viewer that cannot
// keep up loses events rather than stalling the publisher.
const subscriberBuffer = 16

// Hub is an in-process fan-out with per-project rooms. Subscribing with the
// zero UUID joins the global feed and receives every event.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uuid.UUID]map[chan Event]struct{})}
}

var _ Publisher = (*Hub)(nil)

// Subscribe registers a listener for the given room. The returned cancel
// func must be called to release the subscription; the channel is closed by
// it.
func (h *Hub) Subscribe(room uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	subs, ok := h.rooms[room]
	if !ok {
		subs = make(map[chan Event]struct{})
		h.rooms[room] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.rooms[room], ch)
			if len(h.rooms[room]) == 0 {
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to the event's room and to the global feed.
// Slow subscribers are skipped. Never returns an error.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.send(h.rooms[ev.ProjectID], ev)
	if ev.ProjectID != uuid.Nil {
		h.send(h.rooms[uuid.Nil], ev)
	}
	return nil
}

func (h *Hub) send(subs map[chan Event]struct{}, ev Event) {
	for ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
