package bids

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assignsphere/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert inserts the bid or, when a row for (project, writer) already
// exists, overwrites its price, snapshot, and name. The unique index makes
// this a single atomic statement, so two concurrent submissions for the same
// pair collapse into one row. created_at survives a replacement; updated_at
// does not.
func (r *Repository) Upsert(ctx context.Context, b *models.Bid) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO bids (id, project_id, writer_id, full_name, price_cents,
			questions_answered, reviews, on_time_delivery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (project_id, writer_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			price_cents = EXCLUDED.price_cents,
			questions_answered = EXCLUDED.questions_answered,
			reviews = EXCLUDED.reviews,
			on_time_delivery = EXCLUDED.on_time_delivery,
			updated_at = now()
		RETURNING id, created_at, updated_at
	`, b.ID, b.ProjectID, b.WriterID, b.FullName, b.PriceCents,
		b.QuestionsAnswered, b.Reviews, b.OnTimeDelivery).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// ListForProject returns the project's bids newest first.
func (r *Repository) ListForProject(ctx context.Context, projectID uuid.UUID) ([]*models.Bid, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, writer_id, full_name, price_cents,
			questions_answered, reviews, on_time_delivery, created_at, updated_at
		FROM bids WHERE project_id = $1 ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Bid
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.WriterID, &b.FullName,
			&b.PriceCents, &b.QuestionsAnswered, &b.Reviews, &b.OnTimeDelivery,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// DeleteForProject removes every bid on the project and returns the removed
// rows' identifiers so callers can broadcast the deletions.
func (r *Repository) DeleteForProject(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`DELETE FROM bids WHERE project_id = $1 RETURNING id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
