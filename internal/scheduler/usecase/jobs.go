package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/herald/internal/pkg/goerror"
	"github.com/shandysiswandi/herald/internal/pkg/jobqueue"
)

const Queue = "scheduler"

// Job names. The recurring ones double as their repeat ids.
const (
	JobOrderDeadlineReminder = "order-deadline-reminder"
	JobDocumentExpiringScan  = "document-expiring-scan"
	JobDocumentExpiredScan   = "document-expired-scan"
	JobPaymentOverdueScan    = "payment-overdue-scan"
	JobOrderDeadlineCheck    = "order-deadline-check"
)

// RunnableJobs can be triggered by hand without a payload.
func RunnableJobs() []string {
	return []string{JobOrderDeadlineReminder, JobDocumentExpiringScan, JobDocumentExpiredScan, JobPaymentOverdueScan}
}

type OrderDeadlineCheckPayload struct {
	OrderID string `json:"order_id"`
}

type EnqueueOutput struct {
	JobID string `json:"job_id"`
	Added bool   `json:"added"`
}

// RunJob enqueues an immediate one-off run of a recurring scan.
func (s *Usecase) RunJob(ctx context.Context, name string) (*EnqueueOutput, error) {
	ctx, span := s.startSpan(ctx, "RunJob")
	defer span.End()

	if !slices.Contains(RunnableJobs(), name) {
		return nil, goerror.NewNotFound("Job not found")
	}

	return s.enqueue(ctx, name, nil)
}

// EnqueueOrderDeadlineCheck schedules a re-check of one order's deadline.
func (s *Usecase) EnqueueOrderDeadlineCheck(ctx context.Context, orderID string) (*EnqueueOutput, error) {
	ctx, span := s.startSpan(ctx, "EnqueueOrderDeadlineCheck")
	defer span.End()

	if orderID == "" {
		return nil, goerror.NewInvalidInput(nil, "order_id", "order_id is a required field")
	}

	payload, err := json.Marshal(OrderDeadlineCheckPayload{OrderID: orderID})
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	return s.enqueue(ctx, JobOrderDeadlineCheck, payload)
}

func (s *Usecase) enqueue(ctx context.Context, name string, payload []byte) (*EnqueueOutput, error) {
	job, added, err := s.jobs.Enqueue(ctx, Queue, name, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to enqueue job", "name", name, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "job enqueued", "name", name, "job_id", job.ID, "added", added)
	return &EnqueueOutput{JobID: job.ID, Added: added}, nil
}

// FailedJobs lists terminally failed jobs of queue, newest first.
func (s *Usecase) FailedJobs(ctx context.Context, queue string, limit int) ([]*jobqueue.Job, error) {
	ctx, span := s.startSpan(ctx, "FailedJobs")
	defer span.End()

	if queue == "" {
		queue = Queue
	}

	items, err := s.jobs.Failed(ctx, queue, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list failed jobs", "queue", queue, "error", err)
		return nil, goerror.NewServer(err)
	}

	return items, nil
}
