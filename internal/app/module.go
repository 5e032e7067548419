package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/herald/internal/notification"
	"github.com/shandysiswandi/herald/internal/scheduler"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:         a.ctx,
			DBConn:      a.dbConn,
			Messaging:   a.messaging,
			Config:      a.config,
			Instrument:  a.ins,
			UUID:        a.uuid,
			Clock:       a.clock,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
			Router:      a.router,
			Mail:        a.mail,
			SMS:         a.sms,
			JWT:         a.jwt,
			Bus:         a.bus,
			Registry:    a.registry,
			Idempotency: a.idemp,
			Jobs:        a.jobs,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.scheduler.enabled") {
		if err := scheduler.New(scheduler.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			Config:     a.config,
			Instrument: a.ins,
			Clock:      a.clock,
			Router:     a.router,
			Bus:        a.bus,
			Jobs:       a.jobs,
		}); err != nil {
			slog.Error("failed to init module scheduler", "error", err)
			os.Exit(1)
		}
	}
}
