package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/herald/internal/pkg/clock"
	"github.com/shandysiswandi/herald/internal/pkg/config"
	"github.com/shandysiswandi/herald/internal/pkg/eventbus"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/jobqueue"
	"github.com/shandysiswandi/herald/internal/scheduler/entity"
)

type repoDB interface {
	ListOrdersDueWithin(ctx context.Context, from, to time.Time, statuses []string) ([]entity.OrderDeadline, error)
	GetOrderDeadline(ctx context.Context, orderID string) (*entity.OrderDeadline, error)
	FlagDocumentsExpiringSoon(ctx context.Context, now, until time.Time) ([]entity.Document, error)
	FlagDocumentsExpired(ctx context.Context, now time.Time) ([]entity.Document, error)
	FlagPaymentsOverdue(ctx context.Context, now time.Time) ([]entity.Payment, error)
}

// publisher delivers an event and waits for its handlers so a job run ends
// after its fan-out.
type publisher interface {
	PublishAndWait(ctx context.Context, evt eventbus.Event) error
}

type jobs interface {
	Enqueue(ctx context.Context, queue, name string, payload []byte, opts ...jobqueue.Option) (*jobqueue.Job, bool, error)
	Failed(ctx context.Context, queue string, limit int) ([]*jobqueue.Job, error)
}

type Usecase struct {
	repoDB repoDB
	bus    publisher
	jobs   jobs
	cfg    config.Config
	clock  clock.Clocker
	ins    instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	Bus        publisher
	Jobs       jobs
	Config     config.Config
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func NewScheduler(dep Dependency) *Usecase {
	return &Usecase{
		repoDB: dep.RepoDB,
		bus:    dep.Bus,
		jobs:   dep.Jobs,
		cfg:    dep.Config,
		clock:  dep.Clock,
		ins:    dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("scheduler.usecase").Start(ctx, name)
}

// window reads a duration in hours from key, falling back to def.
func (s *Usecase) window(key string, def time.Duration) time.Duration {
	if h := s.cfg.GetInt(key); h > 0 {
		return time.Duration(h) * time.Hour
	}
	return def
}
