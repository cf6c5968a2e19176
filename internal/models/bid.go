package models

import (
	"time"

	"github.com/google/uuid"
)

// Bid is a writer's priced offer on a project. At most one bid exists per
// (project, writer) pair; re-submission overwrites the earlier bid.
//
// The reputation fields are a snapshot of the writer's counters taken when
// the bid was placed, so the listing a student sees does not shift under
// them as the writer's live stats change.
type Bid struct {
	ID                uuid.UUID `json:"id"`
	ProjectID         uuid.UUID `json:"project_id"`
	WriterID          uuid.UUID `json:"writer_id"`
	FullName          string    `json:"full_name"`
	PriceCents        int64     `json:"price_cents"`
	QuestionsAnswered int       `json:"questions_answered"`
	Reviews           int       `json:"reviews"`
	OnTimeDelivery    int       `json:"on_time_delivery"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
