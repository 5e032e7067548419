// Package jobqueue runs one-off and recurring background jobs on top of a
// pluggable backend.
//
// Recurring jobs are declared as a cron expression plus a stable id. The
// engine computes fire times itself and enqueues one-off jobs with the id
// "<repeat id>@<unix seconds>", so the backend only has to understand one
// kind of job. A repeat never has two instances in flight: a tick that finds
// the previous instance still running is delayed, not duplicated.
package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrClosed        = errors.New("jobqueue: engine stopped")
	ErrInvalidRepeat = errors.New("jobqueue: repeat needs id, queue, name and cron")
	ErrInvalidJob    = errors.New("jobqueue: job needs queue and name")
	ErrNoHandler     = errors.New("jobqueue: no handler registered")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is one unit of deferred work.
type Job struct {
	ID          string          `json:"id"`
	Queue       string          `json:"queue"`
	Name        string          `json:"name"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Attempt     int             `json:"attempt"`
	MaxAttempts int             `json:"max_attempts"`
	Backoff     time.Duration   `json:"backoff"`
	RunAt       time.Time       `json:"run_at"`
	Status      Status          `json:"status"`
	LastError   string          `json:"last_error,omitempty"`
	RepeatID    string          `json:"repeat_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
}

// Decode unmarshals the payload into v.
func (j *Job) Decode(v any) error {
	if len(j.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(j.Payload, v)
}

func (j *Job) clone() *Job {
	c := *j
	if j.Payload != nil {
		c.Payload = append(json.RawMessage(nil), j.Payload...)
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// RepeatSpec declares a recurring job.
type RepeatSpec struct {
	ID      string          `json:"id"`
	Queue   string          `json:"queue"`
	Name    string          `json:"name"`
	Cron    string          `json:"cron"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (s RepeatSpec) valid() bool {
	return s.ID != "" && s.Queue != "" && s.Name != "" && s.Cron != ""
}

// Handler runs one job. A returned error schedules a retry until the job
// runs out of attempts.
type Handler func(ctx context.Context, job *Job) error

// Backend stores jobs. Implementations must make Add and Claim safe for
// concurrent use across processes sharing the same store.
type Backend interface {
	// Add stores a pending job. It returns false when a job with the same id
	// is still retained in the queue.
	Add(ctx context.Context, job *Job) (bool, error)
	// Claim leases up to limit jobs due at now. Leases that expired before now
	// are returned to pending first.
	Claim(ctx context.Context, queue string, now time.Time, lease time.Duration, limit int) ([]*Job, error)
	Retry(ctx context.Context, job *Job) error
	Complete(ctx context.Context, job *Job, keep int) error
	Fail(ctx context.Context, job *Job, keep int) error
	Failed(ctx context.Context, queue string, limit int) ([]*Job, error)

	AcquireRepeat(ctx context.Context, repeatID string, ttl time.Duration) (bool, error)
	ReleaseRepeat(ctx context.Context, repeatID string) error
	SaveRepeat(ctx context.Context, spec RepeatSpec) error
	ClearRepeats(ctx context.Context) error
	Repeats(ctx context.Context) ([]RepeatSpec, error)
}

// Option customises a one-off job.
type Option func(*Job)

// WithDelay postpones the first run.
func WithDelay(d time.Duration) Option {
	return func(j *Job) { j.RunAt = j.RunAt.Add(d) }
}

// WithJobID replaces the generated id. Adding a job whose id is still
// retained is a no-op.
func WithJobID(id string) Option {
	return func(j *Job) { j.ID = id }
}

func WithMaxAttempts(n int) Option {
	return func(j *Job) { j.MaxAttempts = n }
}

func WithBackoff(d time.Duration) Option {
	return func(j *Job) { j.Backoff = d }
}
