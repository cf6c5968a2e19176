package closeout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// CloseBiddingArgs is enqueued inside the payment transaction: once a bid is
// paid for, the project's auction is over and the sibling bids get removed.
type CloseBiddingArgs struct {
	ProjectID uuid.UUID `json:"project_id"`
	WriterID  uuid.UUID `json:"writer_id"`
}

func (CloseBiddingArgs) Kind() string { return "close_bidding" }

// BidLedger is the slice of the bid service the worker needs. Deletion
// through the service, not the repository, so deleteBid events still fire.
type BidLedger interface {
	DeleteForProject(ctx context.Context, projectID uuid.UUID) (int, error)
}

// WriterCounters updates the winning writer's performance counters.
type WriterCounters interface {
	IncrementTasksInProgress(ctx context.Context, id uuid.UUID) error
}

type CloseBiddingWorker struct {
	river.WorkerDefaults[CloseBiddingArgs]
	bids    BidLedger
	writers WriterCounters
	log     *slog.Logger
}

func NewCloseBiddingWorker(bids BidLedger, writers WriterCounters, log *slog.Logger) *CloseBiddingWorker {
	if log == nil {
		log = slog.Default()
	}
	return &CloseBiddingWorker{bids: bids, writers: writers, log: log}
}

// Work removes every bid on the paid project and credits the winner's
// active-task counter. Returning an error lets river retry, so closeout is
// eventually consistent while the payment itself stays strictly atomic.
func (w *CloseBiddingWorker) Work(ctx context.Context, job *river.Job[CloseBiddingArgs]) error {
	args := job.Args

	count, err := w.bids.DeleteForProject(ctx, args.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to delete bids for project %s: %w", args.ProjectID, err)
	}

	if err := w.writers.IncrementTasksInProgress(ctx, args.WriterID); err != nil {
		return fmt.Errorf("failed to update writer counters: %w", err)
	}

	w.log.Info("bidding closed", "project_id", args.ProjectID,
		"writer_id", args.WriterID, "bids_removed", count)
	return nil
}
