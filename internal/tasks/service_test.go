package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/assignsphere/backend/internal/models"
)

type stubStore struct {
	rows []ActiveTaskRow
	err  error
}

func (s *stubStore) ActiveByStudent(_ context.Context, _ string) ([]ActiveTaskRow, error) {
	return s.rows, s.err
}

func strptr(s string) *string        { return &s }
func timeptr(t time.Time) *time.Time { return &t }
func fixedNow() time.Time            { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

func newTestService(rows []ActiveTaskRow) *Service {
	svc := NewService(&stubStore{rows: rows})
	svc.now = fixedNow
	return svc
}

func TestActiveForStudent_JoinedFieldsWin(t *testing.T) {
	rows := []ActiveTaskRow{{
		Task: models.Task{
			ProjectType: "stale-type",
			Tutor:       "stale-name",
			Status:      models.TaskStatusInProgress,
			Deadline:    fixedNow().Add(48 * time.Hour),
		},
		ProjectTitle: strptr("Microeconomics essay"),
		ProjectType:  strptr("Essay"),
		TutorName:    strptr("Grace Mwangi"),
	}}

	views, err := newTestService(rows).ActiveForStudent(context.Background(), "AS123456")
	if err != nil {
		t.Fatalf("ActiveForStudent: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	v := views[0]
	if v.Title != "Microeconomics essay" || v.ProjectType != "Essay" || v.Tutor != "Grace Mwangi" {
		t.Errorf("joined fields not preferred: %+v", v)
	}
	if v.TimeRemaining != "2 days" {
		t.Errorf("time remaining = %q, want %q", v.TimeRemaining, "2 days")
	}
}

func TestActiveForStudent_MissingJoinsRenderPlaceholders(t *testing.T) {
	rows := []ActiveTaskRow{{
		Task: models.Task{
			Status:   models.TaskStatusInProgress,
			Deadline: fixedNow().Add(time.Hour),
		},
	}}

	views, err := newTestService(rows).ActiveForStudent(context.Background(), "AS123456")
	if err != nil {
		t.Fatalf("ActiveForStudent: %v", err)
	}
	v := views[0]
	if v.Title != "N/A" || v.ProjectType != "N/A" || v.Tutor != "N/A" {
		t.Errorf("expected placeholders for missing joins, got %+v", v)
	}
}

func TestActiveForStudent_DenormalizedFallback(t *testing.T) {
	rows := []ActiveTaskRow{{
		Task: models.Task{
			ProjectType: "Report",
			Tutor:       "Tunde Okafor",
			Deadline:    fixedNow().Add(time.Hour),
		},
	}}

	views, err := newTestService(rows).ActiveForStudent(context.Background(), "AS123456")
	if err != nil {
		t.Fatalf("ActiveForStudent: %v", err)
	}
	if views[0].ProjectType != "Report" || views[0].Tutor != "Tunde Okafor" {
		t.Errorf("denormalized fields not used as fallback: %+v", views[0])
	}
}

func TestTimeRemaining(t *testing.T) {
	svc := newTestService(nil)

	cases := []struct {
		name     string
		deadline time.Time
		want     string
	}{
		{"partial day rounds up", fixedNow().Add(time.Hour), "1 days"},
		{"exactly one day", fixedNow().Add(24 * time.Hour), "1 days"},
		{"just over a day", fixedNow().Add(25 * time.Hour), "2 days"},
		{"a week out", fixedNow().Add(7 * 24 * time.Hour), "7 days"},
		{"at the deadline", fixedNow(), "Expired"},
		{"past the deadline", fixedNow().Add(-time.Minute), "Expired"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := svc.timeRemaining(tc.deadline); got != tc.want {
				t.Errorf("timeRemaining(%v) = %q, want %q", tc.deadline, got, tc.want)
			}
		})
	}
}

func TestActiveForStudent_ProjectDeadlinePreferred(t *testing.T) {
	rows := []ActiveTaskRow{{
		Task: models.Task{
			Deadline: fixedNow().Add(-time.Hour), // stale, already passed
		},
		ProjectDeadline: timeptr(fixedNow().Add(72 * time.Hour)),
	}}

	views, err := newTestService(rows).ActiveForStudent(context.Background(), "AS123456")
	if err != nil {
		t.Fatalf("ActiveForStudent: %v", err)
	}
	if views[0].TimeRemaining != "3 days" {
		t.Errorf("expected project deadline to win, got %q", views[0].TimeRemaining)
	}
}

func TestActiveForStudent_RequiresStudentCode(t *testing.T) {
	svc := newTestService(nil)
	_, err := svc.ActiveForStudent(context.Background(), "")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestActiveForStudent_EmptyIsNotAnError(t *testing.T) {
	views, err := newTestService(nil).ActiveForStudent(context.Background(), "AS123456")
	if err != nil {
		t.Fatalf("ActiveForStudent: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("expected empty slice, got %v", views)
	}
}
