package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/notification/gateway"
	"github.com/shandysiswandi/herald/internal/pkg/clock"
	"github.com/shandysiswandi/herald/internal/pkg/config"
	"github.com/shandysiswandi/herald/internal/pkg/goroutine"
	"github.com/shandysiswandi/herald/internal/pkg/idempotency"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/jwt"
	"github.com/shandysiswandi/herald/internal/pkg/uid"
	"github.com/shandysiswandi/herald/internal/pkg/validator"
)

type repoDB interface {
	CreateNotification(ctx context.Context, in entity.CreateNotification) (*entity.Notification, error)
	ListNotifications(ctx context.Context, f entity.Filter, before *time.Time, limit int) ([]entity.Notification, error)
	CountNotifications(ctx context.Context, f entity.Filter) (int64, error)
	GetNotification(ctx context.Context, f entity.Filter, id string) (*entity.Notification, error)
	MarkNotificationsRead(ctx context.Context, f entity.Filter, at time.Time) (int64, error)
	MarkNotificationDelivered(ctx context.Context, id string, at time.Time) error
	DeleteReadNotificationsBefore(ctx context.Context, before time.Time) (int64, error)
}

type repoDirectory interface {
	ListCompanyMemberIDs(ctx context.Context, companyID string, roles ...entity.CompanyRole) ([]string, error)
	ListPlatformAdminIDs(ctx context.Context) ([]string, error)
	GetUserContact(ctx context.Context, userID string) (*entity.UserContact, error)
}

type repoChannel interface {
	SendEmail(ctx context.Context, to entity.UserContact, n entity.Notification) error
	SendSMS(ctx context.Context, to entity.UserContact, n entity.Notification) error
	SMSEnabled() bool
}

type repoMQ interface {
	PublishNotificationCreated(ctx context.Context, n entity.Notification) error
}

type realtime interface {
	Register(s gateway.Session) error
	Unregister(s gateway.Session)
	IsOnline(userID string) bool
	TenantsOf(userID string) []string
	DeliverNotification(n entity.Notification) bool
	PushToUserInTenant(userID, tenantID, event string, data any) int
}

type Usecase struct {
	repoDB        repoDB
	repoDirectory repoDirectory
	repoChannel   repoChannel
	repoMQ        repoMQ
	realtime      realtime
	idem          idempotency.Idempotency
	cfg           config.Config
	uuid          uid.StringID
	clock         clock.Clocker
	goroutine     *goroutine.Manager
	validator     validator.Validator
	jwt           jwt.JWT
	ins           instrument.Instrumentation

	dispatched metric.Int64Counter
	delivered  metric.Int64Counter
	failures   metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoDirectory repoDirectory
	RepoChannel   repoChannel
	RepoMQ        repoMQ
	Realtime      realtime
	// Idempotency is optional; without it keyed dispatches are not deduplicated.
	Idempotency idempotency.Idempotency
	Config      config.Config
	UUID        uid.StringID
	Clock       clock.Clocker
	Goroutine   *goroutine.Manager
	Validator   validator.Validator
	JWT         jwt.JWT
	Instrument  instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	meter := dep.Instrument.Meter("notification.usecase")
	//nolint:errcheck // instrument creation on a valid meter does not fail in practice
	dispatched, _ := meter.Int64Counter("notification.dispatched")
	//nolint:errcheck // same as above
	delivered, _ := meter.Int64Counter("notification.delivered")
	//nolint:errcheck // same as above
	failures, _ := meter.Int64Counter("notification.dispatch_failures")

	return &Usecase{
		repoDB:        dep.RepoDB,
		repoDirectory: dep.RepoDirectory,
		repoChannel:   dep.RepoChannel,
		repoMQ:        dep.RepoMQ,
		realtime:      dep.Realtime,
		idem:          dep.Idempotency,
		cfg:           dep.Config,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		goroutine:     dep.Goroutine,
		validator:     dep.Validator,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		dispatched:    dispatched,
		delivered:     delivered,
		failures:      failures,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}
