package inbound

import (
	"context"

	"github.com/shandysiswandi/herald/internal/pkg/jobqueue"
	"github.com/shandysiswandi/herald/internal/scheduler/usecase"
)

type fakeUsecase struct {
	calls   []string
	orderID string
	jobID   string
	scanErr error

	runName    string
	enqueueOut *usecase.EnqueueOutput
	enqueueErr error

	failedQueue string
	failedLimit int
	failed      []*jobqueue.Job
}

func (f *fakeUsecase) scan(name, jobID string) (usecase.ScanResult, error) {
	f.calls = append(f.calls, name)
	f.jobID = jobID
	return usecase.ScanResult{Matched: 2, Published: 2}, f.scanErr
}

func (f *fakeUsecase) RemindOrderDeadlines(_ context.Context, jobID string) (usecase.ScanResult, error) {
	return f.scan(usecase.JobOrderDeadlineReminder, jobID)
}

func (f *fakeUsecase) CheckOrderDeadline(_ context.Context, jobID, orderID string) (usecase.ScanResult, error) {
	f.orderID = orderID
	return f.scan(usecase.JobOrderDeadlineCheck, jobID)
}

func (f *fakeUsecase) ScanExpiringDocuments(_ context.Context, jobID string) (usecase.ScanResult, error) {
	return f.scan(usecase.JobDocumentExpiringScan, jobID)
}

func (f *fakeUsecase) ScanExpiredDocuments(_ context.Context, jobID string) (usecase.ScanResult, error) {
	return f.scan(usecase.JobDocumentExpiredScan, jobID)
}

func (f *fakeUsecase) ScanOverduePayments(_ context.Context, jobID string) (usecase.ScanResult, error) {
	return f.scan(usecase.JobPaymentOverdueScan, jobID)
}

func (f *fakeUsecase) RunJob(_ context.Context, name string) (*usecase.EnqueueOutput, error) {
	f.runName = name
	return f.enqueueOut, f.enqueueErr
}

func (f *fakeUsecase) EnqueueOrderDeadlineCheck(_ context.Context, orderID string) (*usecase.EnqueueOutput, error) {
	f.orderID = orderID
	return f.enqueueOut, f.enqueueErr
}

func (f *fakeUsecase) FailedJobs(_ context.Context, queue string, limit int) ([]*jobqueue.Job, error) {
	f.failedQueue = queue
	f.failedLimit = limit
	return f.failed, nil
}
