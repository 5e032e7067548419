package inbound

import (
	"github.com/shandysiswandi/herald/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// ListFailed returns jobs that exhausted their attempts.
// @Summary List failed jobs
// @Description Returns the most recent jobs of a queue that failed after all retries.
// @Tags Jobs
// @Security BearerAuth
// @Produce json
// @Param queue query string false "Queue name (default scheduler)"
// @Param limit query int false "Maximum number of jobs (default 50)"
// @Success 200 {object} router.successResponse{data=FailedJobsResponse} "Failed jobs"
// @Failure 400 {object} router.errorResponse "Invalid query"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/jobs/failed [get]
func (h *HTTPEndpoint) ListFailed(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt("limit")
	if err != nil {
		return nil, err
	}

	jobs, err := h.uc.FailedJobs(r.Context(), r.GetQuery("queue"), limit)
	if err != nil {
		return nil, err
	}

	return toFailedJobsResponse(jobs), nil
}

// CheckOrderDeadline queues a one-off deadline check for one order.
// @Summary Check order deadline
// @Description Queues an immediate deadline check that reminds the parties when the order is due within the reminder window.
// @Tags Jobs
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 202 {object} router.successResponse{data=EnqueueResponse} "Job queued"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/jobs/order-deadline/{id}/check [post]
func (h *HTTPEndpoint) CheckOrderDeadline(r *router.Request) (any, error) {
	out, err := h.uc.EnqueueOrderDeadlineCheck(r.Context(), r.GetParam("id"))
	if err != nil {
		return nil, err
	}

	return toEnqueueResponse(out), nil
}

// RunJob queues an immediate run of a recurring scan.
// @Summary Run job now
// @Description Queues a recurring scan to run immediately, outside its schedule.
// @Tags Jobs
// @Security BearerAuth
// @Produce json
// @Param name path string true "Job name" Enums(order-deadline-reminder, document-expiring-scan, document-expired-scan, payment-overdue-scan)
// @Success 202 {object} router.successResponse{data=EnqueueResponse} "Job queued"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Job not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/jobs/run/{name} [post]
func (h *HTTPEndpoint) RunJob(r *router.Request) (any, error) {
	out, err := h.uc.RunJob(r.Context(), r.GetParam("name"))
	if err != nil {
		return nil, err
	}

	return toEnqueueResponse(out), nil
}
