package inbound

import (
	"context"

	"github.com/shandysiswandi/herald/internal/pkg/jobqueue"
	"github.com/shandysiswandi/herald/internal/scheduler/usecase"
)

type ucScan interface {
	RemindOrderDeadlines(ctx context.Context, jobID string) (usecase.ScanResult, error)
	CheckOrderDeadline(ctx context.Context, jobID, orderID string) (usecase.ScanResult, error)
	ScanExpiringDocuments(ctx context.Context, jobID string) (usecase.ScanResult, error)
	ScanExpiredDocuments(ctx context.Context, jobID string) (usecase.ScanResult, error)
	ScanOverduePayments(ctx context.Context, jobID string) (usecase.ScanResult, error)
}

type uc interface {
	ucScan

	RunJob(ctx context.Context, name string) (*usecase.EnqueueOutput, error)
	EnqueueOrderDeadlineCheck(ctx context.Context, orderID string) (*usecase.EnqueueOutput, error)
	FailedJobs(ctx context.Context, queue string, limit int) ([]*jobqueue.Job, error)
}
