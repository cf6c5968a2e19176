package projects

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/assignsphere/backend/internal/models"
	"github.com/assignsphere/backend/internal/notify"
)

// CreateInput carries a project creation. Attachments are object store
// references, already uploaded by the handler.
type CreateInput struct {
	OwnerCode   string
	Title       string
	Description string
	ProjectType string
	SubjectArea string
	Deadline    time.Time
	AutoMatch   bool
	Pages       int
	Attachments []string
}

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, p *models.Project) error
	ListByOwner(ctx context.Context, ownerCode string) ([]*models.Project, error)
}

type Service struct {
	store  Store
	events notify.Publisher
	log    *slog.Logger
}

func NewService(store Store, events notify.Publisher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, events: events, log: log}
}

// Create validates and stores a project, then broadcasts it to live viewers.
// Projects are immutable after this point.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Project, error) {
	var missing []string
	if in.OwnerCode == "" {
		missing = append(missing, "user_id")
	}
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.Description == "" {
		missing = append(missing, "description")
	}
	if in.ProjectType == "" {
		missing = append(missing, "project_type")
	}
	if in.SubjectArea == "" {
		missing = append(missing, "subject_area")
	}
	if in.Deadline.IsZero() {
		missing = append(missing, "deadline")
	}
	if len(missing) > 0 {
		return nil, models.Validationf(missing...)
	}

	p := &models.Project{
		ID:          uuid.New(),
		OwnerCode:   in.OwnerCode,
		Title:       in.Title,
		Description: in.Description,
		ProjectType: in.ProjectType,
		SubjectArea: in.SubjectArea,
		Deadline:    in.Deadline,
		AutoMatch:   in.AutoMatch,
		Pages:       in.Pages,
		Attachments: in.Attachments,
	}
	if p.Pages < 1 {
		p.Pages = 1
	}
	if p.Attachments == nil {
		p.Attachments = []string{}
	}

	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}

	// Emission happens here, not in the client, so every write path notifies.
	if err := s.events.Publish(ctx, notify.Event{
		Name:      notify.EventNewProject,
		ProjectID: p.ID,
		Payload:   p,
	}); err != nil {
		s.log.Warn("publish newProject", "project_id", p.ID, "error", err)
	}

	return p, nil
}

// ListForStudent returns the student's projects, newest first.
func (s *Service) ListForStudent(ctx context.Context, ownerCode string) ([]*models.Project, error) {
	if ownerCode == "" {
		return nil, models.Validationf("user_id")
	}
	return s.store.ListByOwner(ctx, ownerCode)
}
