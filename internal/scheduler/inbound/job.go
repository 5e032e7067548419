package inbound

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/herald/internal/pkg/jobqueue"
	"github.com/shandysiswandi/herald/internal/scheduler/usecase"
)

type jobEngine interface {
	Handle(queue, name string, h jobqueue.Handler)
	Schedule(ctx context.Context, spec jobqueue.RepeatSpec) error
}

// RegisterJobs binds every scheduler job to its handler and declares the
// recurring ones under their stable ids.
func RegisterJobs(ctx context.Context, engine jobEngine, uc ucScan) error {
	h := &JobHandler{uc: uc}

	var jobs = []struct {
		name    string
		cron    string // empty for one-off jobs
		handler jobqueue.Handler
	}{
		{name: usecase.JobOrderDeadlineReminder, cron: "0 9,15 * * *", handler: h.scan(uc.RemindOrderDeadlines)},
		{name: usecase.JobDocumentExpiringScan, cron: "0 8 * * 1", handler: h.scan(uc.ScanExpiringDocuments)},
		{name: usecase.JobDocumentExpiredScan, cron: "0 0 * * *", handler: h.scan(uc.ScanExpiredDocuments)},
		{name: usecase.JobPaymentOverdueScan, cron: "*/15 * * * *", handler: h.scan(uc.ScanOverduePayments)},
		{name: usecase.JobOrderDeadlineCheck, handler: h.OrderDeadlineCheck},
	}

	for _, job := range jobs {
		engine.Handle(usecase.Queue, job.name, job.handler)
		if job.cron == "" {
			continue
		}
		if err := engine.Schedule(ctx, jobqueue.RepeatSpec{
			ID:    job.name,
			Queue: usecase.Queue,
			Name:  job.name,
			Cron:  job.cron,
		}); err != nil {
			return err
		}
	}

	return nil
}

type JobHandler struct {
	uc ucScan
}

func (h *JobHandler) scan(fn func(ctx context.Context, jobID string) (usecase.ScanResult, error)) jobqueue.Handler {
	return func(ctx context.Context, job *jobqueue.Job) error {
		res, err := fn(ctx, job.ID)
		slog.InfoContext(ctx, "scheduled scan finished",
			"job_id", job.ID, "name", job.Name, "matched", res.Matched, "published", res.Published)
		return err
	}
}

func (h *JobHandler) OrderDeadlineCheck(ctx context.Context, job *jobqueue.Job) error {
	var payload usecase.OrderDeadlineCheckPayload
	if err := job.Decode(&payload); err != nil {
		slog.ErrorContext(ctx, "failed to decode order deadline check payload", "job_id", job.ID, "error", err)
		return nil
	}

	_, err := h.uc.CheckOrderDeadline(ctx, job.ID, payload.OrderID)
	return err
}
