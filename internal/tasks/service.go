package tasks

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/assignsphere/backend/internal/models"
)

// naPlaceholder fills display fields whose join target no longer exists.
const naPlaceholder = "N/A"

// expiredLabel is shown once a deadline has passed.
const expiredLabel = "Expired"

// Store is the task persistence surface the view service needs.
type Store interface {
	ActiveByStudent(ctx context.Context, studentCode string) ([]ActiveTaskRow, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// ActiveForStudent returns the student's in-progress tasks as display rows.
func (s *Service) ActiveForStudent(ctx context.Context, studentCode string) ([]models.TaskView, error) {
	if studentCode == "" {
		return nil, models.Validationf("user_id")
	}

	rows, err := s.store.ActiveByStudent(ctx, studentCode)
	if err != nil {
		return nil, err
	}

	views := make([]models.TaskView, 0, len(rows))
	for _, row := range rows {
		views = append(views, s.render(row))
	}
	return views, nil
}

func (s *Service) render(row ActiveTaskRow) models.TaskView {
	v := models.TaskView{
		Title:       naPlaceholder,
		ProjectType: row.Task.ProjectType,
		Tutor:       row.Task.Tutor,
		Status:      row.Task.Status,
	}
	if row.ProjectTitle != nil {
		v.Title = *row.ProjectTitle
	}
	if row.ProjectType != nil {
		v.ProjectType = *row.ProjectType
	}
	if v.ProjectType == "" {
		v.ProjectType = naPlaceholder
	}
	if row.TutorName != nil {
		v.Tutor = *row.TutorName
	}
	if v.Tutor == "" {
		v.Tutor = naPlaceholder
	}

	deadline := row.Task.Deadline
	if row.ProjectDeadline != nil {
		deadline = *row.ProjectDeadline
	}
	v.TimeRemaining = s.timeRemaining(deadline)
	return v
}

// timeRemaining renders max(deadline - now, 0) in whole days, rounding up,
// or the expired sentinel at zero.
func (s *Service) timeRemaining(deadline time.Time) string {
	remaining := deadline.Sub(s.now())
	if remaining <= 0 {
		return expiredLabel
	}
	days := int(math.Ceil(remaining.Hours() / 24))
	return fmt.Sprintf("%d days", days)
}
