package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"

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

const envProduction = "production"

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("app.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	loc, err := time.LoadLocation(a.config.GetString("app.tz"))
	if err != nil {
		slog.Error("failed to load app timezone", "tz", a.config.GetString("app.tz"), "error", err)
		os.Exit(1)
	}
	a.clock = clock.New(loc)
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.max_goroutine"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake(a.config.GetInt64("app.node_id"))
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow
}

func (a *App) initJWT() {
	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:     []byte(a.config.GetString("jwt.secret")),
		Issuer:     a.config.GetString("jwt.issuer"),
		Audiences:  a.config.GetArray("jwt.audiences"),
		TTLMinutes: a.config.GetMinute("jwt.ttl_minutes"),
		Leeway:     a.config.GetSecond("jwt.leeway_seconds"),
		Clock:      a.clock,
		UUID:       a.uuid,
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = defaultJWT
}

// connectBackoff retries startup probes a few times while dependencies boot.
func connectBackoff() retry.Backoff {
	return retry.WithMaxRetries(4, retry.NewExponential(500*time.Millisecond))
}

func (a *App) initDatabase() {
	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	config.MaxConns = int32(a.config.GetInt("database.pool.max_conns"))        //nolint:gosec // small config value
	config.MinConns = int32(a.config.GetInt("database.pool.min_conns"))        //nolint:gosec // small config value
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	err = retry.Do(a.ctx, connectBackoff(), func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			slog.Warn("DB not reachable yet", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

// initCache connects redis. Without it idempotency falls back to an
// in-process tracker and the job engine decides on its own fallback.
func (a *App) initCache() {
	url := strings.TrimSpace(a.config.GetString("redis.url"))
	if url == "" {
		slog.Warn("redis url not configured, idempotency is process local")
		a.idemp = idempotency.NewMemory()
		return
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	err = retry.Do(a.ctx, connectBackoff(), func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.Error("redis unreachable, idempotency is process local", "error", err)
		//nolint:errcheck,gosec // the client never connected
		rdb.Close()
		a.idemp = idempotency.NewMemory()
		return
	}

	a.cacheConn = rdb
	a.idemp = idempotency.New(a.cacheConn)
}

func (a *App) initJobs() {
	var backend jobqueue.Backend
	switch {
	case a.cacheConn != nil:
		backend = jobqueue.NewRedis(a.cacheConn)
	case a.config.GetString("app.env") == envProduction:
		slog.Error("job engine requires redis in production")
		os.Exit(1)
	case !a.config.GetBool("jobs.allow_memory_fallback"):
		slog.Error("job engine requires redis and memory fallback is disabled")
		os.Exit(1)
	default:
		slog.Error("job engine running on the in-memory backend, jobs are lost on restart")
		backend = jobqueue.NewMemory()
	}

	a.jobs = jobqueue.New(backend, jobqueue.Config{
		Concurrency:   a.config.GetInt("jobs.concurrency"),
		PollInterval:  time.Duration(a.config.GetInt("jobs.poll_interval_ms")) * time.Millisecond,
		MaxAttempts:   a.config.GetInt("jobs.attempts"),
		Backoff:       a.config.GetSecond("jobs.backoff_seconds"),
		KeepCompleted: a.config.GetInt("jobs.keep_completed"),
		KeepFailed:    a.config.GetInt("jobs.keep_failed"),
		Timeout:       a.config.GetSecond("jobs.timeout_seconds"),
	},
		jobqueue.WithClock(a.clock),
		jobqueue.WithIDs(a.uid),
		jobqueue.WithMeter(a.ins.Meter("jobqueue")),
	)
}

func (a *App) initMail() {
	m, err := mail.New(mail.Config{
		Driver: a.config.GetString("mail.driver"),
		From:   a.config.GetString("mail.from"),
		SMTP: mail.SMTPConfig{
			Host:     a.config.GetString("mail.smtp.host"),
			Port:     a.config.GetInt("mail.smtp.port"),
			Username: a.config.GetString("mail.smtp.username"),
			Password: a.config.GetString("mail.smtp.password"),
		},
		SendGridAPIKey: a.config.GetString("mail.sendgrid.api_key"),
	})
	if err != nil {
		slog.Error("failed to init mail", "error", err, "driver", a.config.GetString("mail.driver"))
		os.Exit(1)
	}

	a.mail = m
}

func (a *App) initSMS() {
	s, err := sms.New(sms.Config{
		Driver:        a.config.GetString("sms.driver"),
		DefaultRegion: a.config.GetString("sms.default_region"),
		AccountSID:    a.config.GetString("sms.twilio.account_sid"),
		AuthToken:     a.config.GetString("sms.twilio.auth_token"),
		From:          a.config.GetString("sms.twilio.from"),
	})
	if err != nil {
		slog.Error("failed to init sms", "error", err, "driver", a.config.GetString("sms.driver"))
		os.Exit(1)
	}

	a.sms = s
}

// initMessaging connects the broker. An empty driver disables ingress and egress.
func (a *App) initMessaging() {
	driver := strings.TrimSpace(a.config.GetString("messaging.driver"))
	if driver == "" {
		slog.Info("messaging disabled")
		return
	}

	client, err := messaging.New(messaging.Config{
		Driver: driver,
		NATS: messaging.NATSConfig{
			URL:  a.config.GetString("messaging.nats.url"),
			Name: a.config.GetString("messaging.nats.name"),
			Options: []nats.Option{
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.PingInterval(a.config.GetSecond("messaging.nats.ping_interval_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		Kafka: messaging.KafkaConfig{
			Brokers: a.config.GetArray("messaging.kafka.brokers"),
			Dialer: &kafka.Dialer{
				ClientID:  a.config.GetString("messaging.kafka.client_id"),
				Timeout:   a.config.GetSecond("messaging.kafka.dial_timeout_seconds"),
				DualStack: true,
			},
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initEventBus() {
	a.bus = eventbus.New(a.ins.Meter("eventbus"))
	a.registry = gateway.NewRegistry(a.ins.Meter("gateway"))
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
	})

	a.router.Health(map[string]router.HealthCheck{
		"database": func(ctx context.Context) error {
			return a.dbConn.Ping(ctx)
		},
		"redis": func(ctx context.Context) error {
			if a.cacheConn == nil {
				return nil
			}
			return a.cacheConn.Ping(ctx).Err()
		},
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	// WriteTimeout stays 0 by default so SSE streams are not cut.
	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_timeout"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Realtime",
			fn: func(context.Context) error {
				a.registry.Close()
				return nil
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				if a.messaging == nil {
					return nil
				}
				return a.messaging.Close()
			},
		},
		{
			name: "Mail",
			fn: func(context.Context) error {
				return a.mail.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}
				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				a.dbConn.Close()

				return nil
			},
		},
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}

