package tasks

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assignsphere/backend/internal/models"
)

// ActiveTaskRow is a task joined against its project and writer. The join
// targets are nullable: a task can outlive a cascaded project deletion or a
// rejected writer, and the view degrades instead of failing.
type ActiveTaskRow struct {
	Task            models.Task
	ProjectTitle    *string
	ProjectType     *string
	ProjectDeadline *time.Time
	TutorName       *string
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertTx inserts or overwrites the task keyed by (project, writer,
// student) inside the caller's transaction. Only the payment processor
// calls this; a task cannot enter in-progress any other way.
func (r *Repository) UpsertTx(ctx context.Context, tx pgx.Tx, t *models.Task) error {
	return tx.QueryRow(ctx, `
		INSERT INTO tasks (id, project_id, writer_id, student_code, project_type,
			subject_area, tutor, status, started_at, deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (project_id, writer_id, student_code) DO UPDATE SET
			project_type = EXCLUDED.project_type,
			subject_area = EXCLUDED.subject_area,
			tutor = EXCLUDED.tutor,
			status = EXCLUDED.status,
			started_at = EXCLUDED.started_at,
			deadline = EXCLUDED.deadline
		RETURNING id
	`, t.ID, t.ProjectID, t.WriterID, t.StudentCode, t.ProjectType,
		t.SubjectArea, t.Tutor, t.Status, t.StartedAt, t.Deadline).Scan(&t.ID)
}

// ActiveByStudent returns the student's in-progress tasks with their joined
// display fields, newest first.
func (r *Repository) ActiveByStudent(ctx context.Context, studentCode string) ([]ActiveTaskRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.project_id, t.writer_id, t.student_code, t.project_type,
			t.subject_area, t.tutor, t.status, t.started_at, t.completed_at, t.deadline,
			p.title, p.project_type, p.deadline, w.full_name
		FROM tasks t
		LEFT JOIN projects p ON p.id = t.project_id
		LEFT JOIN writers w ON w.id = t.writer_id
		WHERE t.student_code = $1 AND t.status = $2
		ORDER BY t.started_at DESC
	`, studentCode, models.TaskStatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []ActiveTaskRow
	for rows.Next() {
		var row ActiveTaskRow
		t := &row.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.WriterID, &t.StudentCode,
			&t.ProjectType, &t.SubjectArea, &t.Tutor, &t.Status, &t.StartedAt,
			&t.CompletedAt, &t.Deadline,
			&row.ProjectTitle, &row.ProjectType, &row.ProjectDeadline, &row.TutorName); err != nil {
			return nil, err
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
