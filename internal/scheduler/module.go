package scheduler

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shandysiswandi/herald/internal/pkg/clock"
	"github.com/shandysiswandi/herald/internal/pkg/config"
	"github.com/shandysiswandi/herald/internal/pkg/eventbus"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/jobqueue"
	"github.com/shandysiswandi/herald/internal/pkg/router"
	"github.com/shandysiswandi/herald/internal/scheduler/inbound"
	"github.com/shandysiswandi/herald/internal/scheduler/outbound/db"
	"github.com/shandysiswandi/herald/internal/scheduler/usecase"
)

var errNoJobEngine = errors.New("scheduler: job engine is required")

type Dependency struct {
	Ctx        context.Context
	DBConn     *pgxpool.Pool
	Config     config.Config
	Instrument instrument.Instrumentation
	Clock      clock.Clocker
	Router     *router.Router
	Bus        *eventbus.Bus
	Jobs       *jobqueue.Engine
}

func New(dep Dependency) error {
	if dep.Jobs == nil {
		return errNoJobEngine
	}

	uc := usecase.NewScheduler(usecase.Dependency{
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		Bus:        dep.Bus,
		Jobs:       dep.Jobs,
		Config:     dep.Config,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return inbound.RegisterJobs(dep.Ctx, dep.Jobs, uc)
}
