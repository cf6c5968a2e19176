package models

import (
	"time"

	"github.com/google/uuid"
)

// Task lifecycle states. The progression is linear; there is no reverse
// transition and no task-level cancelled state (cancellations surface as a
// counter on the writer).
const (
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
	TaskStatusPaid       = "paid"
)

// Task is the tracked unit of work once a bid has been paid for. Exactly one
// task exists per (project, writer, student) triple; the payment processor
// upserts it and nothing else creates one.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	WriterID    uuid.UUID  `json:"writer_id"`
	StudentCode string     `json:"student_code"`
	ProjectType string     `json:"project_type"`
	SubjectArea string     `json:"subject_area"`
	Tutor       string     `json:"tutor"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Deadline    time.Time  `json:"deadline"`
}

// TaskView is the display row for a student's active-tasks screen.
type TaskView struct {
	Title         string `json:"title"`
	ProjectType   string `json:"project_type"`
	TimeRemaining string `json:"time_remaining"`
	Tutor         string `json:"tutor"`
	Status        string `json:"status"`
}
