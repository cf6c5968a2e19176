package models

import (
	"time"

	"github.com/google/uuid"
)

// Writer is a tutor account. A writer may not authenticate or bid until an
// admin sets IsApproved.
type Writer struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	CountryCode    string    `json:"country_code,omitempty"`
	PasswordHash   string    `json:"-"`
	Expertise      string    `json:"expertise,omitempty"`
	Qualifications string    `json:"qualifications,omitempty"`
	Experience     string    `json:"experience,omitempty"`
	Attachments    []string  `json:"attachments"`
	IsApproved     bool      `json:"is_approved"`

	// Performance counters shown to students alongside bids.
	TasksInProgress   int `json:"tasks_in_progress"`
	QuestionsAnswered int `json:"questions_answered"`
	Reviews           int `json:"reviews"`
	OnTimeDelivery    int `json:"on_time_delivery"`
	CancelledTasks    int `json:"cancelled_tasks"`

	CreatedAt time.Time `json:"created_at"`
}

// WriterMetrics is the public slice of a writer's counters.
type WriterMetrics struct {
	FullName          string `json:"full_name"`
	TasksInProgress   int    `json:"tasks_in_progress"`
	QuestionsAnswered int    `json:"questions_answered"`
	Reviews           int    `json:"reviews"`
	OnTimeDelivery    int    `json:"on_time_delivery"`
	CancelledTasks    int    `json:"cancelled_tasks"`
}
