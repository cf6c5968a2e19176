package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestHub_RoomScoping(t *testing.T) {
	hub := NewHub()
	roomA := uuid.New()
	roomB := uuid.New()

	chA, cancelA := hub.Subscribe(roomA)
	defer cancelA()
	chB, cancelB := hub.Subscribe(roomB)
	defer cancelB()

	if err := hub.Publish(context.Background(), Event{Name: EventNewBid, ProjectID: roomA}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case ev := <-chA:
		if ev.Name != EventNewBid {
			t.Errorf("room A got %q, want %q", ev.Name, EventNewBid)
		}
	default:
		t.Fatal("room A subscriber missed its event")
	}

	select {
	case ev := <-chB:
		t.Errorf("room B received foreign event %q", ev.Name)
	default:
	}
}

func TestHub_GlobalFeedSeesEverything(t *testing.T) {
	hub := NewHub()
	global, cancel := hub.Subscribe(uuid.Nil)
	defer cancel()

	hub.Publish(context.Background(), Event{Name: EventNewProject, ProjectID: uuid.New()})
	hub.Publish(context.Background(), Event{Name: EventNewBid, ProjectID: uuid.New()})

	if got := len(global); got != 2 {
		t.Errorf("global feed has %d events, want 2", got)
	}
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	room := uuid.New()
	_, cancel := hub.Subscribe(room)
	defer cancel()

	// Overfill the buffer; Publish must never stall.
	for i := 0; i < subscriberBuffer*2; i++ {
		if err := hub.Publish(context.Background(), Event{Name: EventNewBid, ProjectID: room}); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	hub := NewHub()
	room := uuid.New()
	ch, cancel := hub.Subscribe(room)

	cancel()
	cancel() // second call must not panic on the closed channel

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after cancel")
	}

	// Publishing into an emptied room is a no-op.
	if err := hub.Publish(context.Background(), Event{Name: EventDeleteBid, ProjectID: room}); err != nil {
		t.Fatalf("Publish after cancel: %v", err)
	}
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, Event) error { return f.err }

func TestMulti_ReturnsFirstError(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(uuid.Nil)
	defer cancel()

	sentinel := errors.New("broker down")
	pub := Multi(hub, failingPublisher{err: sentinel})

	err := pub.Publish(context.Background(), Event{Name: EventNewProject})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected broker error to surface, got %v", err)
	}
	if len(ch) != 1 {
		t.Error("hub delivery should still happen before the failing publisher")
	}
}
