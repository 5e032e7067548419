package inbound

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shandysiswandi/herald/internal/pkg/jobqueue"
	"github.com/shandysiswandi/herald/internal/scheduler/usecase"
)

type EnqueueResponse struct {
	JobID string `json:"job_id"`
	Added bool   `json:"added"`
}

func (EnqueueResponse) StatusCode() int { return http.StatusAccepted }

func (r EnqueueResponse) Message() string {
	if !r.Added {
		return "Job already queued"
	}
	return "Job queued"
}

func toEnqueueResponse(out *usecase.EnqueueOutput) EnqueueResponse {
	return EnqueueResponse{JobID: out.JobID, Added: out.Added}
}

type FailedJobResponse struct {
	ID          string          `json:"id"`
	Queue       string          `json:"queue"`
	Name        string          `json:"name"`
	Payload     json.RawMessage `json:"payload,omitempty" swaggertype:"object"`
	Attempt     int             `json:"attempt"`
	MaxAttempts int             `json:"max_attempts"`
	LastError   string          `json:"last_error,omitempty"`
	RepeatID    string          `json:"repeat_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
}

type FailedJobsResponse struct {
	Jobs []FailedJobResponse `json:"jobs"`
}

func toFailedJobsResponse(jobs []*jobqueue.Job) FailedJobsResponse {
	resp := FailedJobsResponse{Jobs: make([]FailedJobResponse, 0, len(jobs))}
	for _, job := range jobs {
		item := FailedJobResponse{
			ID:          job.ID,
			Queue:       job.Queue,
			Name:        job.Name,
			Attempt:     job.Attempt,
			MaxAttempts: job.MaxAttempts,
			LastError:   job.LastError,
			RepeatID:    job.RepeatID,
			CreatedAt:   job.CreatedAt,
			FinishedAt:  job.FinishedAt,
			Payload:     job.Payload,
		}
		resp.Jobs = append(resp.Jobs, item)
	}
	return resp
}
