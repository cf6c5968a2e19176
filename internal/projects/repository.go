package projects

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assignsphere/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, p *models.Project) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO projects (id, owner_code, title, description, project_type,
			subject_area, deadline, auto_match, pages, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, p.ID, p.OwnerCode, p.Title, p.Description, p.ProjectType, p.SubjectArea,
		p.Deadline, p.AutoMatch, p.Pages, p.Attachments).Scan(&p.CreatedAt)
}

// GetByID returns nil, nil when no project exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := r.pool.QueryRow(ctx, `
		SELECT id, owner_code, title, description, project_type, subject_area,
			deadline, auto_match, pages, attachments, created_at
		FROM projects WHERE id = $1
	`, id).Scan(&p.ID, &p.OwnerCode, &p.Title, &p.Description, &p.ProjectType,
		&p.SubjectArea, &p.Deadline, &p.AutoMatch, &p.Pages, &p.Attachments, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *Repository) ListByOwner(ctx context.Context, ownerCode string) ([]*models.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_code, title, description, project_type, subject_area,
			deadline, auto_match, pages, attachments, created_at
		FROM projects WHERE owner_code = $1 ORDER BY created_at DESC
	`, ownerCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.OwnerCode, &p.Title, &p.Description,
			&p.ProjectType, &p.SubjectArea, &p.Deadline, &p.AutoMatch, &p.Pages,
			&p.Attachments, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
