// Package notify fans state-change events out to live viewers. Producers
// depend on the Publisher interface, never on a concrete transport, so a
// no-op or a test double can stand in.
package notify

import (
	"context"

	"github.com/google/uuid"
)

// Event names on the wire.
const (
	EventNewProject = "newProject"
	EventNewBid     = "newBid"
	EventDeleteBid  = "deleteBid"
)

// Event is a single fan-out message. ProjectID keys the room the event
// belongs to; the hub also feeds every event to room-less subscribers.
type Event struct {
	Name      string    `json:"event"`
	ProjectID uuid.UUID `json:"project_id"`
	Payload   any       `json:"payload"`
}

// Publisher broadcasts an event. Delivery is fire-and-forget: no
// acknowledgment, no replay for late subscribers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopPublisher discards everything.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

type multiPublisher []Publisher

// Multi fans a publish out to several publishers. The first error is
// returned after all publishers have been attempted.
func Multi(pubs ...Publisher) Publisher {
	return multiPublisher(pubs)
}

func (m multiPublisher) Publish(ctx context.Context, ev Event) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
