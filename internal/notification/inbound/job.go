package inbound

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/herald/internal/pkg/jobqueue"
)

const (
	JobQueue         = "notification"
	JobCleanup       = "notification-cleanup"
	jobCleanupCron   = "0 3 * * 0"
	jobCleanupRepeat = "notification-cleanup"
)

type ucJob interface {
	CleanupReadNotifications(ctx context.Context) (int64, error)
}

type jobEngine interface {
	Handle(queue, name string, h jobqueue.Handler)
	Schedule(ctx context.Context, spec jobqueue.RepeatSpec) error
}

// RegisterJobs declares the weekly cleanup of old read notifications.
func RegisterJobs(ctx context.Context, engine jobEngine, uc ucJob) error {
	h := &JobHandler{uc: uc}
	engine.Handle(JobQueue, JobCleanup, h.Cleanup)

	return engine.Schedule(ctx, jobqueue.RepeatSpec{
		ID:    jobCleanupRepeat,
		Queue: JobQueue,
		Name:  JobCleanup,
		Cron:  jobCleanupCron,
	})
}

type JobHandler struct {
	uc ucJob
}

func (h *JobHandler) Cleanup(ctx context.Context, job *jobqueue.Job) error {
	deleted, err := h.uc.CleanupReadNotifications(ctx)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "read notifications cleaned up", "job_id", job.ID, "deleted", deleted)
	return nil
}
