package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assignsphere/backend/internal/models"
)

// Unique index names, used to tell which constraint a 23505 came from.
const (
	studentEmailConstraint = "accounts_email_key"
	studentCodeConstraint  = "accounts_student_code_key"
	writerEmailConstraint  = "writers_email_key"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateStudent(ctx context.Context, a *models.Account) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, full_name, email, student_code, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, a.ID, a.FullName, a.Email, a.StudentCode, a.PasswordHash).Scan(&a.CreatedAt)
}

// GetStudentByEmail returns nil, nil when no account exists.
func (r *Repository) GetStudentByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, full_name, email, student_code, password_hash, created_at
		FROM accounts WHERE email = $1
	`, email).Scan(&a.ID, &a.FullName, &a.Email, &a.StudentCode, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) StudentCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE student_code = $1)`, code).Scan(&exists)
	return exists, err
}

func (r *Repository) CreateWriter(ctx context.Context, w *models.Writer) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO writers (id, full_name, email, phone, country_code, password_hash,
			expertise, qualifications, experience, attachments, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE)
		RETURNING created_at
	`, w.ID, w.FullName, w.Email, w.Phone, w.CountryCode, w.PasswordHash,
		w.Expertise, w.Qualifications, w.Experience, w.Attachments).Scan(&w.CreatedAt)
}

// GetWriterByEmail returns nil, nil when no writer exists.
func (r *Repository) GetWriterByEmail(ctx context.Context, email string) (*models.Writer, error) {
	row := r.pool.QueryRow(ctx, writerSelect+` WHERE email = $1`, email)
	return scanWriter(row)
}

// GetWriterByID returns nil, nil when no writer exists.
func (r *Repository) GetWriterByID(ctx context.Context, id uuid.UUID) (*models.Writer, error) {
	row := r.pool.QueryRow(ctx, writerSelect+` WHERE id = $1`, id)
	return scanWriter(row)
}

// ListWriters returns writers filtered by approval state, newest first.
func (r *Repository) ListWriters(ctx context.Context, approved bool) ([]*models.Writer, error) {
	rows, err := r.pool.Query(ctx, writerSelect+` WHERE is_approved = $1 ORDER BY created_at DESC`, approved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Writer
	for rows.Next() {
		w, err := scanWriter(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

// ApproveWriter flips the approval flag. Returns false if no such writer.
func (r *Repository) ApproveWriter(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE writers SET is_approved = TRUE WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteWriter removes the writer record outright. Returns false if no such
// writer.
func (r *Repository) DeleteWriter(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM writers WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementTasksInProgress bumps the writer's active-task counter.
func (r *Repository) IncrementTasksInProgress(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE writers SET tasks_in_progress = tasks_in_progress + 1 WHERE id = $1`, id)
	return err
}

const writerSelect = `
	SELECT id, full_name, email, phone, country_code, password_hash,
		expertise, qualifications, experience, attachments, is_approved,
		tasks_in_progress, questions_answered, reviews, on_time_delivery,
		cancelled_tasks, created_at
	FROM writers`

func scanWriter(row pgx.Row) (*models.Writer, error) {
	var w models.Writer
	err := row.Scan(&w.ID, &w.FullName, &w.Email, &w.Phone, &w.CountryCode,
		&w.PasswordHash, &w.Expertise, &w.Qualifications, &w.Experience,
		&w.Attachments, &w.IsApproved, &w.TasksInProgress, &w.QuestionsAnswered,
		&w.Reviews, &w.OnTimeDelivery, &w.CancelledTasks, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}
