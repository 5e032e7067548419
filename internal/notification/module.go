package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shandysiswandi/herald/internal/notification/gateway"
	"github.com/shandysiswandi/herald/internal/notification/inbound"
	"github.com/shandysiswandi/herald/internal/notification/outbound/channel"
	"github.com/shandysiswandi/herald/internal/notification/outbound/db"
	"github.com/shandysiswandi/herald/internal/notification/outbound/mq"
	"github.com/shandysiswandi/herald/internal/notification/usecase"
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

type Dependency struct {
	Ctx         context.Context
	DBConn      *pgxpool.Pool
	Messaging   messaging.Messaging
	Config      config.Config
	Instrument  instrument.Instrumentation
	UUID        uid.StringID
	Clock       clock.Clocker
	Goroutine   *goroutine.Manager
	Validator   validator.Validator
	Router      *router.Router
	Mail        mail.Mail
	SMS         sms.SMS
	JWT         jwt.JWT
	Bus         *eventbus.Bus
	Registry    *gateway.Registry
	Idempotency idempotency.Idempotency
	Jobs        *jobqueue.Engine
}

func New(dep Dependency) error {
	dbNotif := db.NewDB(dep.DBConn, dep.Instrument)

	repoChannel, err := channel.New(dep.Mail, dep.SMS, channel.Config{
		DefaultRegion: dep.Config.GetString("sms.default_region"),
		WebURL:        dep.Config.GetString("app.web_url"),
		AppName:       dep.Config.GetString("app.name"),
	}, dep.Instrument)
	if err != nil {
		return err
	}

	// a nil broker keeps egress off
	var pub messaging.Publisher
	if dep.Messaging != nil {
		pub = dep.Messaging
	}

	uc := usecase.NewNotification(usecase.Dependency{
		RepoDB:        dbNotif,
		RepoDirectory: dbNotif,
		RepoChannel:   repoChannel,
		RepoMQ:        mq.New(pub, dep.Instrument),
		Realtime:      dep.Registry,
		Idempotency:   dep.Idempotency,
		Config:        dep.Config,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		Goroutine:     dep.Goroutine,
		Validator:     dep.Validator,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
	})

	uc.RegisterHandlers(dep.Bus)

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.RealtimeConfig{
		Limiter: gateway.NewConnectLimiter(
			dep.Config.GetFloat64("realtime.connect_rate"),
			dep.Config.GetInt("realtime.connect_burst"),
		),
		SendBuffer:     dep.Config.GetInt("realtime.send_buffer"),
		Ping:           dep.Config.GetSecond("realtime.ping_seconds"),
		AllowedOrigins: dep.Config.GetArray("realtime.allowed_origins"),
		UUID:           dep.UUID,
		Clock:          dep.Clock,
		Instrument:     dep.Instrument,
	})

	if dep.Jobs != nil {
		if err := inbound.RegisterJobs(dep.Ctx, dep.Jobs, uc); err != nil {
			return err
		}
	}

	if dep.Ctx != nil && dep.Messaging != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, dep.Bus, dep.Instrument)
	}

	return nil
}
