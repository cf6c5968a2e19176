package projects

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/assignsphere/backend/internal/models"
	"github.com/assignsphere/backend/internal/notify"
)

type stubStore struct {
	created []*models.Project
	err     error
}

func (s *stubStore) Create(_ context.Context, p *models.Project) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, p)
	return nil
}

func (s *stubStore) ListByOwner(_ context.Context, ownerCode string) ([]*models.Project, error) {
	var list []*models.Project
	for _, p := range s.created {
		if p.OwnerCode == ownerCode {
			list = append(list, p)
		}
	}
	return list, nil
}

type captureEvents struct {
	events []notify.Event
	err    error
}

func (c *captureEvents) Publish(_ context.Context, ev notify.Event) error {
	c.events = append(c.events, ev)
	return c.err
}

func validInput() CreateInput {
	return CreateInput{
		OwnerCode:   "AS123456",
		Title:       "Microeconomics essay",
		Description: "2000 words on price elasticity",
		ProjectType: "Essay",
		SubjectArea: "Economics",
		Deadline:    time.Now().Add(96 * time.Hour),
		Pages:       8,
	}
}

func TestCreate_BroadcastsNewProject(t *testing.T) {
	store := &stubStore{}
	events := &captureEvents{}
	svc := NewService(store, events, nil)

	p, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("expected 1 stored project, got %d", len(store.created))
	}
	if len(events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.events))
	}
	ev := events.events[0]
	if ev.Name != notify.EventNewProject {
		t.Errorf("event name = %q, want %q", ev.Name, notify.EventNewProject)
	}
	if ev.ProjectID != p.ID {
		t.Errorf("event room = %s, want project id %s", ev.ProjectID, p.ID)
	}
}

func TestCreate_PublishFailureDoesNotFailCreate(t *testing.T) {
	store := &stubStore{}
	events := &captureEvents{err: errors.New("broker down")}
	svc := NewService(store, events, nil)

	if _, err := svc.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("a broadcast failure must not fail the write: %v", err)
	}
}

func TestCreate_StoreFailureEmitsNothing(t *testing.T) {
	store := &stubStore{err: errors.New("db down")}
	events := &captureEvents{}
	svc := NewService(store, events, nil)

	if _, err := svc.Create(context.Background(), validInput()); err == nil {
		t.Fatal("expected the store error to surface")
	}
	if len(events.events) != 0 {
		t.Error("no event may be emitted for an unsaved project")
	}
}

func TestCreate_Defaults(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, notify.NopPublisher{}, nil)

	in := validInput()
	in.Pages = 0
	in.Attachments = nil

	p, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Pages != 1 {
		t.Errorf("pages defaulted to %d, want 1", p.Pages)
	}
	if p.Attachments == nil {
		t.Error("attachments must serialize as [], not null")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(&stubStore{}, notify.NopPublisher{}, nil)

	_, err := svc.Create(context.Background(), CreateInput{Title: "only a title"})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]bool{
		"user_id": true, "description": true, "project_type": true,
		"subject_area": true, "deadline": true,
	}
	if len(verr.Fields) != len(want) {
		t.Fatalf("missing fields = %v, want %d entries", verr.Fields, len(want))
	}
	for _, f := range verr.Fields {
		if !want[f] {
			t.Errorf("unexpected missing field %q", f)
		}
	}
}

func TestListForStudent_RequiresOwner(t *testing.T) {
	svc := NewService(&stubStore{}, notify.NopPublisher{}, nil)
	_, err := svc.ListForStudent(context.Background(), "")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
