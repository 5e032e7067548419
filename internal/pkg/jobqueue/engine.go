package jobqueue

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	"github.com/shandysiswandi/herald/internal/pkg/clock"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/stacktrace"
	"github.com/shandysiswandi/herald/internal/pkg/uid"
)

// Engine schedules repeats, enqueues jobs and runs workers.
type Engine struct {
	backend Backend
	cfg     Config
	clock   clock.Clocker
	ids     uid.NumberID
	parser  cron.Parser

	mu       sync.RWMutex
	handlers map[string]map[string]Handler
	repeats  map[string]*repeatEntry

	started atomic.Bool
	stopped atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	completed metric.Int64Counter
	retried   metric.Int64Counter
	failed    metric.Int64Counter
}

type repeatEntry struct {
	spec     RepeatSpec
	schedule cron.Schedule
	next     time.Time
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

func WithClock(c clock.Clocker) EngineOption {
	return func(e *Engine) { e.clock = c }
}

func WithIDs(ids uid.NumberID) EngineOption {
	return func(e *Engine) { e.ids = ids }
}

func WithMeter(m metric.Meter) EngineOption {
	return func(e *Engine) {
		//nolint:errcheck // instrument creation on a valid meter does not fail in practice
		e.completed, _ = m.Int64Counter("jobs.completed")
		//nolint:errcheck // instrument creation on a valid meter does not fail in practice
		e.retried, _ = m.Int64Counter("jobs.retried")
		//nolint:errcheck // instrument creation on a valid meter does not fail in practice
		e.failed, _ = m.Int64Counter("jobs.failed")
	}
}

// New builds an engine over backend.
func New(backend Backend, cfg Config, opts ...EngineOption) *Engine {
	e := &Engine{
		backend:  backend,
		cfg:      cfg.withDefaults(),
		clock:    clock.New(time.UTC),
		parser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		handlers: make(map[string]map[string]Handler),
		repeats:  make(map[string]*repeatEntry),
	}

	WithMeter(instrument.NewNoop().Meter("jobqueue"))(e)
	for _, opt := range opts {
		opt(e)
	}

	if e.ids == nil {
		//nolint:errcheck // node 0 is always in range
		sf, _ := uid.NewSnowflake(0)
		e.ids = sf
	}

	return e
}

// Handle registers h for jobs called name on queue. Queues get workers only
// when registered before Start.
func (e *Engine) Handle(queue, name string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handlers[queue] == nil {
		e.handlers[queue] = make(map[string]Handler)
	}
	e.handlers[queue][name] = h
}

// Schedule declares a recurring job. Declaring the same id again replaces
// the previous declaration, so one id always maps to one schedule.
func (e *Engine) Schedule(ctx context.Context, spec RepeatSpec) error {
	if !spec.valid() {
		return ErrInvalidRepeat
	}

	sched, err := e.parser.Parse(spec.Cron)
	if err != nil {
		return fmt.Errorf("jobqueue: parse cron %q: %w", spec.Cron, err)
	}

	e.mu.Lock()
	e.repeats[spec.ID] = &repeatEntry{spec: spec, schedule: sched, next: sched.Next(e.clock.Now())}
	e.mu.Unlock()

	if e.started.Load() {
		return e.backend.SaveRepeat(ctx, spec)
	}
	return nil
}

// Repeats lists declared recurring jobs ordered by id.
func (e *Engine) Repeats() []RepeatSpec {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]RepeatSpec, 0, len(e.repeats))
	for _, r := range e.repeats {
		out = append(out, r.spec)
	}
	slices.SortFunc(out, func(a, b RepeatSpec) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// NextRun reports when the repeat with id fires next.
func (e *Engine) NextRun(id string) (time.Time, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	r, ok := e.repeats[id]
	if !ok {
		return time.Time{}, false
	}
	return r.next, true
}

// Enqueue adds a one-off job. A duplicate id returns the existing id with
// added == false.
func (e *Engine) Enqueue(ctx context.Context, queue, name string, payload []byte, opts ...Option) (*Job, bool, error) {
	if e.stopped.Load() {
		return nil, false, ErrClosed
	}
	if queue == "" || name == "" {
		return nil, false, ErrInvalidJob
	}

	now := e.clock.Now()
	job := &Job{
		ID:          strconv.FormatInt(e.ids.Generate(), 10),
		Queue:       queue,
		Name:        name,
		Payload:     payload,
		MaxAttempts: e.cfg.MaxAttempts,
		Backoff:     e.cfg.Backoff,
		RunAt:       now,
		Status:      StatusPending,
		CreatedAt:   now,
	}
	for _, opt := range opts {
		opt(job)
	}
	if job.MaxAttempts < 1 {
		job.MaxAttempts = 1
	}

	added, err := e.backend.Add(ctx, job)
	if err != nil {
		return nil, false, err
	}
	return job, added, nil
}

// Failed returns the most recent terminally failed jobs of queue.
func (e *Engine) Failed(ctx context.Context, queue string, limit int) ([]*Job, error) {
	if limit <= 0 || limit > e.cfg.KeepFailed {
		limit = e.cfg.KeepFailed
	}
	return e.backend.Failed(ctx, queue, limit)
}

// Start replaces the persisted repeat registrations with the declared ones
// and launches the scheduler and the workers. It does not block.
func (e *Engine) Start(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return nil
	}

	if err := e.backend.ClearRepeats(ctx); err != nil {
		return fmt.Errorf("jobqueue: clear repeats: %w", err)
	}
	for _, spec := range e.Repeats() {
		if err := e.backend.SaveRepeat(ctx, spec); err != nil {
			return fmt.Errorf("jobqueue: save repeat %s: %w", spec.ID, err)
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel

	e.wg.Go(func() { e.scheduleLoop(runCtx) })

	e.mu.RLock()
	queues := make([]string, 0, len(e.handlers))
	for q := range e.handlers {
		queues = append(queues, q)
	}
	e.mu.RUnlock()

	for _, q := range queues {
		for range e.cfg.Concurrency {
			e.wg.Go(func() { e.workLoop(runCtx, q) })
		}
	}

	slog.InfoContext(ctx, "job engine started", "queues", queues, "repeats", len(e.Repeats()))
	return nil
}

// Stop halts polling and waits for running jobs or ctx.
func (e *Engine) Stop(ctx context.Context) error {
	if !e.stopped.CompareAndSwap(false, true) {
		return nil
	}
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) scheduleLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// tick enqueues every repeat whose fire time has passed.
func (e *Engine) tick(ctx context.Context) {
	now := e.clock.Now()

	e.mu.RLock()
	due := make([]*repeatEntry, 0)
	for _, r := range e.repeats {
		if !now.Before(r.next) {
			due = append(due, r)
		}
	}
	e.mu.RUnlock()

	for _, r := range due {
		if e.fire(ctx, r, now) {
			e.mu.Lock()
			r.next = r.schedule.Next(now)
			e.mu.Unlock()
		}
	}
}

// fire reports whether the tick was consumed. A tick is kept (and retried on
// the next poll) while the previous instance is still in flight.
func (e *Engine) fire(ctx context.Context, r *repeatEntry, now time.Time) bool {
	e.mu.RLock()
	spec, at := r.spec, r.next
	e.mu.RUnlock()

	acquired, err := e.backend.AcquireRepeat(ctx, spec.ID, e.repeatLockTTL())
	if err != nil {
		slog.ErrorContext(ctx, "failed to acquire repeat lock", "repeat_id", spec.ID, "error", err)
		return false
	}
	if !acquired {
		slog.DebugContext(ctx, "previous run still in flight, tick delayed", "repeat_id", spec.ID)
		return false
	}

	job := &Job{
		ID:          spec.ID + "@" + strconv.FormatInt(at.Unix(), 10),
		Queue:       spec.Queue,
		Name:        spec.Name,
		Payload:     spec.Payload,
		MaxAttempts: e.cfg.MaxAttempts,
		Backoff:     e.cfg.Backoff,
		RunAt:       now,
		Status:      StatusPending,
		RepeatID:    spec.ID,
		CreatedAt:   now,
	}

	added, err := e.backend.Add(ctx, job)
	if err != nil {
		slog.ErrorContext(ctx, "failed to enqueue repeat", "repeat_id", spec.ID, "error", err)
		e.releaseRepeat(ctx, spec.ID)
		return false
	}
	if !added {
		// another process already enqueued this tick
		e.releaseRepeat(ctx, spec.ID)
	}
	return true
}

func (e *Engine) repeatLockTTL() time.Duration {
	return e.cfg.Timeout*time.Duration(e.cfg.MaxAttempts) + 2*retryDelay(e.cfg.Backoff, e.cfg.MaxAttempts)
}

func (e *Engine) releaseRepeat(ctx context.Context, id string) {
	if err := e.backend.ReleaseRepeat(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to release repeat lock", "repeat_id", id, "error", err)
	}
}

func (e *Engine) workLoop(ctx context.Context, queue string) {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		for e.runOnce(ctx, queue) {
			if ctx.Err() != nil {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// runOnce claims and runs at most one job. It reports whether a job ran.
func (e *Engine) runOnce(ctx context.Context, queue string) bool {
	jobs, err := e.backend.Claim(ctx, queue, e.clock.Now(), e.cfg.Timeout, 1)
	if err != nil {
		if ctx.Err() == nil {
			slog.ErrorContext(ctx, "failed to claim job", "queue", queue, "error", err)
		}
		return false
	}
	if len(jobs) == 0 {
		return false
	}

	for _, job := range jobs {
		e.process(ctx, job)
	}
	return true
}

func (e *Engine) process(ctx context.Context, job *Job) {
	e.mu.RLock()
	h := e.handlers[job.Queue][job.Name]
	e.mu.RUnlock()

	// job bookkeeping must land even while stopping
	store := instrument.SetCorrelationID(context.WithoutCancel(ctx), job.ID)
	attrs := metric.WithAttributes(attribute.String("queue", job.Queue), attribute.String("name", job.Name))

	job.Attempt++
	var runErr error
	if h == nil {
		runErr = fmt.Errorf("%w for %s/%s", ErrNoHandler, job.Queue, job.Name)
		job.Attempt = max(job.Attempt, job.MaxAttempts)
	} else {
		runCtx, cancel := context.WithTimeout(instrument.SetCorrelationID(ctx, job.ID), e.cfg.Timeout)
		runErr = call(runCtx, h, job)
		cancel()
	}

	now := e.clock.Now()
	switch {
	case runErr == nil:
		job.Status = StatusCompleted
		job.LastError = ""
		job.FinishedAt = &now
		if err := e.backend.Complete(store, job, e.cfg.KeepCompleted); err != nil {
			slog.ErrorContext(store, "failed to mark job completed", "job_id", job.ID, "error", err)
		}
		e.completed.Add(store, 1, attrs)
		e.finishRepeat(store, job)

	case job.Attempt >= job.MaxAttempts:
		job.Status = StatusFailed
		job.LastError = runErr.Error()
		job.FinishedAt = &now
		if err := e.backend.Fail(store, job, e.cfg.KeepFailed); err != nil {
			slog.ErrorContext(store, "failed to mark job failed", "job_id", job.ID, "error", err)
		}
		e.failed.Add(store, 1, attrs)
		slog.ErrorContext(store, "job failed permanently",
			"job_id", job.ID, "queue", job.Queue, "name", job.Name, "attempt", job.Attempt, "error", runErr)
		e.finishRepeat(store, job)

	default:
		backoff := job.Backoff
		if backoff <= 0 {
			backoff = e.cfg.Backoff
		}
		job.Status = StatusPending
		job.LastError = runErr.Error()
		job.RunAt = now.Add(retryDelay(backoff, job.Attempt))
		if err := e.backend.Retry(store, job); err != nil {
			slog.ErrorContext(store, "failed to reschedule job", "job_id", job.ID, "error", err)
		}
		e.retried.Add(store, 1, attrs)
		slog.WarnContext(store, "job failed, retry scheduled",
			"job_id", job.ID, "name", job.Name, "attempt", job.Attempt, "run_at", job.RunAt, "error", runErr)
	}
}

func (e *Engine) finishRepeat(ctx context.Context, job *Job) {
	if job.RepeatID != "" {
		e.releaseRepeat(ctx, job.RepeatID)
	}
}

func call(ctx context.Context, h Handler, job *Job) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in job handler", "job_id", job.ID, "stack", paths)
			}
			err = errors.New(fmt.Sprint("panic: ", rvr))
		}
	}()

	return h(ctx, job)
}
