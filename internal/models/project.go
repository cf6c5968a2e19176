package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a student's posted work request. Immutable once created; there
// is deliberately no update or delete endpoint.
type Project struct {
	ID          uuid.UUID `json:"id"`
	OwnerCode   string    `json:"owner_code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ProjectType string    `json:"project_type"`
	SubjectArea string    `json:"subject_area"`
	Deadline    time.Time `json:"deadline"`
	AutoMatch   bool      `json:"auto_match"`
	Pages       int       `json:"pages"`
	Attachments []string  `json:"attachments"`
	CreatedAt   time.Time `json:"created_at"`
}
