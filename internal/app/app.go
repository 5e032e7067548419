package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/herald/internal/notification/gateway"
	"github.com/shandysiswandi/herald/internal/pkg/clock"
	"github.com/shandysiswandi/herald/internal/pkg/config"
	"github.com/shandysiswandi/herald/internal/pkg/eventbus"
	"github.com/shandysiswandi/herald/internal/pkg/goroutine"
	"github.com/shandysiswandi/herald/internal/pkg/idempotency"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/jobqueue"
	"github.com/shandysiswandi/herald/internal/pkg/jwt"
	"github.com/shandysiswandi/herald/internal/pkg/mail"
	"github.com/shandysiswandi/herald/internal/pkg/messaging"
	"github.com/shandysiswandi/herald/internal/pkg/router"
	"github.com/shandysiswandi/herald/internal/pkg/sms"
	"github.com/shandysiswandi/herald/internal/pkg/uid"
	"github.com/shandysiswandi/herald/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	jobs      *jobqueue.Engine
	mail      mail.Mail
	sms       sms.SMS
	messaging messaging.Messaging
	bus       *eventbus.Bus
	registry  *gateway.Registry

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initJobs()
	app.initMail()
	app.initSMS()
	app.initMessaging()
	app.initEventBus()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
