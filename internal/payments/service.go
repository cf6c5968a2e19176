package payments

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/assignsphere/backend/internal/closeout"
	"github.com/assignsphere/backend/internal/models"
	"github.com/assignsphere/backend/internal/tasks"
)

// ErrPaymentDeclined is returned when the gateway refuses the charge.
// Nothing is persisted in that case.
var ErrPaymentDeclined = errors.New("payment declined")

// Gateway authorizes a charge before anything is written. The default
// implementation approves everything; a real processor slots in here without
// changing the transaction shape.
type Gateway interface {
	Authorize(ctx context.Context, method string, amountCents int64) error
}

type autoApproveGateway struct{}

// NewAutoApproveGateway returns a gateway that accepts every charge.
func NewAutoApproveGateway() Gateway { return autoApproveGateway{} }

func (autoApproveGateway) Authorize(context.Context, string, int64) error { return nil }

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PaymentStore persists payment rows inside a transaction.
type PaymentStore interface {
	InsertTx(ctx context.Context, tx pgx.Tx, p *models.Payment) error
}

// TaskStore upserts the task row inside the same transaction.
type TaskStore interface {
	UpsertTx(ctx context.Context, tx pgx.Tx, t *models.Task) error
}

// ProjectLookup fetches the project for the task's display fields.
type ProjectLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// WriterLookup fetches the writer for the task's tutor name.
type WriterLookup interface {
	GetWriterByID(ctx context.Context, id uuid.UUID) (*models.Writer, error)
}

// InsertCloseBiddingTxFunc enqueues the bid-closeout job within the given
// transaction. Provided by main using river.Client.InsertTx.
type InsertCloseBiddingTxFunc func(ctx context.Context, tx pgx.Tx, args closeout.CloseBiddingArgs) error

// ProcessInput carries one payment attempt.
type ProcessInput struct {
	ProjectID     uuid.UUID
	WriterID      uuid.UUID
	StudentCode   string
	PaymentMethod string
	AmountCents   int64
	Deadline      time.Time
}

// Result is a processed payment and the task it activated.
type Result struct {
	Payment *models.Payment `json:"payment"`
	Task    *models.Task    `json:"task"`
}

type Service struct {
	db                 TxBeginner
	payments           PaymentStore
	tasks              TaskStore
	projects           ProjectLookup
	writers            WriterLookup
	gateway            Gateway
	insertCloseBidding InsertCloseBiddingTxFunc
	log                *slog.Logger
	now                func() time.Time
}

func NewService(db TxBeginner, payments PaymentStore, taskStore TaskStore,
	projects ProjectLookup, writers WriterLookup, gateway Gateway,
	insertCloseBidding InsertCloseBiddingTxFunc, log *slog.Logger) *Service {
	if gateway == nil {
		gateway = NewAutoApproveGateway()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:                 db,
		payments:           payments,
		tasks:              taskStore,
		projects:           projects,
		writers:            writers,
		gateway:            gateway,
		insertCloseBidding: insertCloseBidding,
		log:                log,
		now:                time.Now,
	}
}

// Process records the payment and activates the task. The payment row, the
// task upsert, and the closeout job share one transaction: either all three
// commit or none do, so a completed payment can never exist without its
// in-progress task.
//
// Re-running with the same (project, writer, student) triple overwrites the
// existing task's deadline and start time rather than duplicating it.
func (s *Service) Process(ctx context.Context, in ProcessInput) (*Result, error) {
	var missing []string
	if in.ProjectID == uuid.Nil {
		missing = append(missing, "project_id")
	}
	if in.WriterID == uuid.Nil {
		missing = append(missing, "writer_id")
	}
	if in.StudentCode == "" {
		missing = append(missing, "user_id")
	}
	if in.PaymentMethod == "" {
		missing = append(missing, "payment_method")
	}
	if in.AmountCents <= 0 {
		missing = append(missing, "amount")
	}
	if in.Deadline.IsZero() {
		missing = append(missing, "deadline")
	}
	if len(missing) > 0 {
		return nil, models.Validationf(missing...)
	}

	if err := s.gateway.Authorize(ctx, in.PaymentMethod, in.AmountCents); err != nil {
		return nil, errors.Join(ErrPaymentDeclined, err)
	}

	// Display fields for the task. Missing references degrade to empty
	// strings; the active-tasks view renders those as placeholders.
	var projectType, subjectArea, tutor string
	if project, err := s.projects.GetByID(ctx, in.ProjectID); err != nil {
		return nil, err
	} else if project != nil {
		projectType = project.ProjectType
		subjectArea = project.SubjectArea
	}
	if writer, err := s.writers.GetWriterByID(ctx, in.WriterID); err != nil {
		return nil, err
	} else if writer != nil {
		tutor = writer.FullName
	}

	now := s.now()
	payment := &models.Payment{
		ID:            uuid.New(),
		ProjectID:     in.ProjectID,
		WriterID:      in.WriterID,
		PaymentMethod: in.PaymentMethod,
		AmountCents:   in.AmountCents,
		Status:        models.PaymentStatusCompleted,
		PaidAt:        &now,
	}
	task := &models.Task{
		ID:          uuid.New(),
		ProjectID:   in.ProjectID,
		WriterID:    in.WriterID,
		StudentCode: in.StudentCode,
		ProjectType: projectType,
		SubjectArea: subjectArea,
		Tutor:       tutor,
		Status:      models.TaskStatusInProgress,
		StartedAt:   now,
		Deadline:    in.Deadline,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.payments.InsertTx(ctx, tx, payment); err != nil {
		return nil, err
	}
	if err := s.tasks.UpsertTx(ctx, tx, task); err != nil {
		return nil, err
	}
	if err := s.insertCloseBidding(ctx, tx, closeout.CloseBiddingArgs{
		ProjectID: in.ProjectID,
		WriterID:  in.WriterID,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.log.Info("payment processed", "payment_id", payment.ID,
		"project_id", in.ProjectID, "writer_id", in.WriterID,
		"task_id", task.ID)

	return &Result{Payment: payment, Task: task}, nil
}

var _ TaskStore = (*tasks.Repository)(nil)
