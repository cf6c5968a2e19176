package payments

import (
	"context"

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

// InsertTx records a payment inside the caller's transaction.
func (r *Repository) InsertTx(ctx context.Context, tx pgx.Tx, p *models.Payment) error {
	return tx.QueryRow(ctx, `
		INSERT INTO payments (id, project_id, writer_id, payment_method,
			amount_cents, status, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, p.ID, p.ProjectID, p.WriterID, p.PaymentMethod, p.AmountCents,
		p.Status, p.PaidAt).Scan(&p.CreatedAt)
}
