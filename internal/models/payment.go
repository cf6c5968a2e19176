package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment records a charge for an accepted bid. One row per payment attempt.
type Payment struct {
	ID            uuid.UUID  `json:"id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	WriterID      uuid.UUID  `json:"writer_id"`
	PaymentMethod string     `json:"payment_method"`
	AmountCents   int64      `json:"amount_cents"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
