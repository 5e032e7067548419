package jobqueue

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Memory keeps jobs in process. Everything is lost on restart.
type Memory struct {
	mu        sync.Mutex
	now       func() time.Time
	jobs      map[string]map[string]*Job
	pending   map[string]map[string]struct{}
	active    map[string]map[string]time.Time
	completed map[string][]string
	failed    map[string][]string
	locks     map[string]time.Time
	repeats   map[string]RepeatSpec
}

// NewMemory returns an empty in-process backend.
func NewMemory() *Memory {
	return &Memory{
		now:       time.Now,
		jobs:      make(map[string]map[string]*Job),
		pending:   make(map[string]map[string]struct{}),
		active:    make(map[string]map[string]time.Time),
		completed: make(map[string][]string),
		failed:    make(map[string][]string),
		locks:     make(map[string]time.Time),
		repeats:   make(map[string]RepeatSpec),
	}
}

func (m *Memory) queueLocked(queue string) {
	if m.jobs[queue] == nil {
		m.jobs[queue] = make(map[string]*Job)
		m.pending[queue] = make(map[string]struct{})
		m.active[queue] = make(map[string]time.Time)
	}
}

func (m *Memory) Add(_ context.Context, job *Job) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queueLocked(job.Queue)
	if _, exists := m.jobs[job.Queue][job.ID]; exists {
		return false, nil
	}

	m.jobs[job.Queue][job.ID] = job.clone()
	m.pending[job.Queue][job.ID] = struct{}{}
	return true, nil
}

func (m *Memory) Claim(_ context.Context, queue string, now time.Time, lease time.Duration, limit int) ([]*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queueLocked(queue)

	for id, deadline := range m.active[queue] {
		if !now.Before(deadline) {
			delete(m.active[queue], id)
			m.pending[queue][id] = struct{}{}
		}
	}

	due := make([]*Job, 0)
	for id := range m.pending[queue] {
		if j := m.jobs[queue][id]; !now.Before(j.RunAt) {
			due = append(due, j)
		}
	}
	slices.SortFunc(due, func(a, b *Job) int { return a.RunAt.Compare(b.RunAt) })
	if len(due) > limit {
		due = due[:limit]
	}

	out := make([]*Job, 0, len(due))
	for _, j := range due {
		delete(m.pending[queue], j.ID)
		m.active[queue][j.ID] = now.Add(lease)
		j.Status = StatusActive
		out = append(out, j.clone())
	}
	return out, nil
}

func (m *Memory) Retry(_ context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queueLocked(job.Queue)
	delete(m.active[job.Queue], job.ID)
	m.jobs[job.Queue][job.ID] = job.clone()
	m.pending[job.Queue][job.ID] = struct{}{}
	return nil
}

func (m *Memory) Complete(_ context.Context, job *Job, keep int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finishLocked(job, m.completed, keep)
	return nil
}

func (m *Memory) Fail(_ context.Context, job *Job, keep int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finishLocked(job, m.failed, keep)
	return nil
}

// finishLocked records job as the newest entry of list and drops entries
// beyond keep.
func (m *Memory) finishLocked(job *Job, list map[string][]string, keep int) {
	q := job.Queue
	m.queueLocked(q)
	delete(m.active[q], job.ID)
	delete(m.pending[q], job.ID)
	m.jobs[q][job.ID] = job.clone()

	list[q] = append([]string{job.ID}, list[q]...)
	if len(list[q]) > keep {
		for _, id := range list[q][keep:] {
			delete(m.jobs[q], id)
		}
		list[q] = list[q][:keep]
	}
}

func (m *Memory) Failed(_ context.Context, queue string, limit int) ([]*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.failed[queue]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]*Job, 0, len(ids))
	for _, id := range ids {
		if j, ok := m.jobs[queue][id]; ok {
			out = append(out, j.clone())
		}
	}
	return out, nil
}

func (m *Memory) AcquireRepeat(_ context.Context, repeatID string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if until, ok := m.locks[repeatID]; ok && now.Before(until) {
		return false, nil
	}
	m.locks[repeatID] = now.Add(ttl)
	return true, nil
}

func (m *Memory) ReleaseRepeat(_ context.Context, repeatID string) error {
	m.mu.Lock()
	delete(m.locks, repeatID)
	m.mu.Unlock()
	return nil
}

func (m *Memory) SaveRepeat(_ context.Context, spec RepeatSpec) error {
	m.mu.Lock()
	m.repeats[spec.ID] = spec
	m.mu.Unlock()
	return nil
}

func (m *Memory) ClearRepeats(context.Context) error {
	m.mu.Lock()
	clear(m.repeats)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Repeats(context.Context) ([]RepeatSpec, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]RepeatSpec, 0, len(m.repeats))
	for _, s := range m.repeats {
		out = append(out, s)
	}
	return out, nil
}
