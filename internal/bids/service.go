package bids

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/assignsphere/backend/internal/models"
	"github.com/assignsphere/backend/internal/notify"
)

var (
	// ErrProjectNotFound is returned when the referenced project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrWriterNotFound is returned when the bidding writer does not exist or
	// is not approved.
	ErrWriterNotFound = errors.New("writer not found")
	// ErrNoBids signals a project that exists but has zero bids. Distinct
	// from ErrProjectNotFound so callers can tell the two apart.
	ErrNoBids = errors.New("no bids for project")
)

// Pricing converts a writer's base price into the price shown to students.
// The multiplier lives here, in the ledger's contract, so every client sees
// consistent pricing.
type Pricing struct {
	MultiplierNum int64
	MultiplierDen int64
}

// DefaultPricing is the platform's base-price multiplier, 5/2 (= x2.5).
var DefaultPricing = Pricing{MultiplierNum: 5, MultiplierDen: 2}

func (p Pricing) Final(baseCents int64) int64 {
	return baseCents * p.MultiplierNum / p.MultiplierDen
}

// Store is the bid persistence surface.
type Store interface {
	Upsert(ctx context.Context, b *models.Bid) error
	ListForProject(ctx context.Context, projectID uuid.UUID) ([]*models.Bid, error)
	DeleteForProject(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

// ProjectLookup answers whether a project exists.
type ProjectLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// WriterLookup resolves the bidding writer for the reputation snapshot.
type WriterLookup interface {
	GetWriterByID(ctx context.Context, id uuid.UUID) (*models.Writer, error)
}

type Service struct {
	store    Store
	projects ProjectLookup
	writers  WriterLookup
	pricing  Pricing
	events   notify.Publisher
	log      *slog.Logger
}

func NewService(store Store, projects ProjectLookup, writers WriterLookup, pricing Pricing, events notify.Publisher, log *slog.Logger) *Service {
	if pricing.MultiplierDen == 0 {
		pricing = DefaultPricing
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, projects: projects, writers: writers, pricing: pricing, events: events, log: log}
}

// Place upserts the writer's bid on the project. The stored price is the
// base price run through the platform multiplier, and the reputation fields
// are snapshotted from the writer record at this moment, not taken from the
// caller.
func (s *Service) Place(ctx context.Context, projectID, writerID uuid.UUID, basePriceCents int64) (*models.Bid, error) {
	var missing []string
	if projectID == uuid.Nil {
		missing = append(missing, "project_id")
	}
	if writerID == uuid.Nil {
		missing = append(missing, "writer_id")
	}
	if basePriceCents <= 0 {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return nil, models.Validationf(missing...)
	}

	exists, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProjectNotFound
	}

	writer, err := s.writers.GetWriterByID(ctx, writerID)
	if err != nil {
		return nil, err
	}
	if writer == nil || !writer.IsApproved {
		return nil, ErrWriterNotFound
	}

	b := &models.Bid{
		ID:                uuid.New(),
		ProjectID:         projectID,
		WriterID:          writerID,
		FullName:          writer.FullName,
		PriceCents:        s.pricing.Final(basePriceCents),
		QuestionsAnswered: writer.QuestionsAnswered,
		Reviews:           writer.Reviews,
		OnTimeDelivery:    writer.OnTimeDelivery,
	}
	if err := s.store.Upsert(ctx, b); err != nil {
		return nil, err
	}

	if err := s.events.Publish(ctx, notify.Event{
		Name:      notify.EventNewBid,
		ProjectID: projectID,
		Payload:   b,
	}); err != nil {
		s.log.Warn("publish newBid", "bid_id", b.ID, "error", err)
	}

	return b, nil
}

// ListForProject returns the project's bids newest first. A missing project
// yields ErrProjectNotFound; an existing project with zero bids yields
// ErrNoBids.
func (s *Service) ListForProject(ctx context.Context, projectID uuid.UUID) ([]*models.Bid, error) {
	if projectID == uuid.Nil {
		return nil, models.Validationf("project_id")
	}

	exists, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProjectNotFound
	}

	list, err := s.store.ListForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNoBids
	}
	return list, nil
}

// DeleteForProject bulk-removes the project's bids, broadcasting a deleteBid
// event for each removed row. Returns the number removed.
func (s *Service) DeleteForProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	if projectID == uuid.Nil {
		return 0, models.Validationf("project_id")
	}

	ids, err := s.store.DeleteForProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := s.events.Publish(ctx, notify.Event{
			Name:      notify.EventDeleteBid,
			ProjectID: projectID,
			Payload:   map[string]uuid.UUID{"bid_id": id, "project_id": projectID},
		}); err != nil {
			s.log.Warn("publish deleteBid", "bid_id", id, "error", err)
		}
	}
	return len(ids), nil
}
