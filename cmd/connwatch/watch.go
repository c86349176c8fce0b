package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/connkit/pkg/connection"
	"github.com/dmitrymomot/connkit/pkg/eventhub"
	"github.com/dmitrymomot/connkit/pkg/httpserver"
	"github.com/dmitrymomot/connkit/pkg/lifecycle"
	"github.com/dmitrymomot/connkit/pkg/logger"
	"github.com/dmitrymomot/connkit/pkg/metrics"
	"github.com/dmitrymomot/connkit/pkg/transport/memory"
	"github.com/dmitrymomot/connkit/pkg/transport/mongo"
	"github.com/dmitrymomot/connkit/pkg/transport/pg"
	"github.com/dmitrymomot/connkit/pkg/transport/redis"
)

var errNotConnected = errors.New("connwatch: no open connection")

const disconnectTimeout = 10 * time.Second

// run builds the configured transport and watches it until ctx ends.
func run(ctx context.Context, cfg Config, log *slog.Logger, serverOpts ...httpserver.Option) error {
	driver, err := cfg.driver()
	if err != nil {
		return err
	}
	switch driver {
	case driverMongo:
		tr, err := mongo.New(cfg.Mongo, mongo.WithLogger(log))
		if err != nil {
			return err
		}
		return watch(ctx, cfg, driver, log, tr, mongo.Healthcheck, serverOpts...)
	case driverRedis:
		tr, err := redis.New(cfg.Redis, redis.WithLogger(log))
		if err != nil {
			return err
		}
		return watch(ctx, cfg, driver, log, tr, func(c *goredis.Client) func(context.Context) error {
			return redis.Healthcheck(c)
		}, serverOpts...)
	case driverPostgres:
		tr, err := pg.New(cfg.Postgres, pg.WithLogger(log))
		if err != nil {
			return err
		}
		return watch(ctx, cfg, driver, log, tr, pg.Healthcheck, serverOpts...)
	default:
		return watch(ctx, cfg, driver, log, memory.New(), memoryHealthcheck, serverOpts...)
	}
}

func memoryHealthcheck(c *memory.Conn) func(context.Context) error {
	return func(context.Context) error {
		if c.Closed() {
			return errNotConnected
		}
		return nil
	}
}

// watch connects, serves the status endpoints and disconnects on shutdown.
func watch[H any](
	ctx context.Context,
	cfg Config,
	driver string,
	log *slog.Logger,
	tr connection.Transport[H],
	healthcheck func(H) func(context.Context) error,
	serverOpts ...httpserver.Option,
) error {
	log = log.With(logger.Transport(driver))
	m, err := connection.New(tr, cfg.Connection,
		connection.WithLogger(log),
		connection.WithEvents(signalLoggers(log)),
		connection.WithErrorReporter(func(ev eventhub.Event, err error) {
			log.Error("signal handler failed", logger.Signal(ev.Signal), logger.Error(err))
		}),
	)
	if err != nil {
		return err
	}

	if err := connectWithRetry(ctx, m, log); err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), disconnectTimeout)
		defer cancel()
		if err := m.Disconnect(dctx); err != nil {
			log.Error("disconnect failed", logger.Error(err))
		}
	}()

	ready := func(ctx context.Context) error {
		h, ok := m.Handle()
		if !ok {
			return errNotConnected
		}
		return healthcheck(h)(ctx)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.NewCollector(m, prometheus.Labels{"transport": driver}),
	)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.Mount("/", httpserver.Routes(m, log, ready))

	opts := append([]httpserver.Option{httpserver.WithLogger(log)}, serverOpts...)
	srv := httpserver.NewFromConfig(cfg.HTTP, opts...)
	return srv.Run(ctx, router)
}

// connectWithRetry retries the initial Connect with the manager's policy.
func connectWithRetry[H any](ctx context.Context, m *connection.Manager[H], log *slog.Logger) error {
	policy := m.Policy()
	for attempt := 1; ; attempt++ {
		_, err := m.Connect(ctx)
		if err == nil {
			return nil
		}
		if !policy.HasRetriesRemaining(attempt) {
			return fmt.Errorf("%w: initial connect: %w", connection.ErrRetriesExhausted, err)
		}

		log.WarnContext(ctx, "initial connect failed",
			logger.Attempt(attempt),
			logger.Duration(policy.NextDelay(attempt)),
			logger.Error(err),
		)
		if err := policy.Wait(ctx, attempt); err != nil {
			return err
		}
	}
}

// signalLoggers logs every lifecycle signal at a level matching its severity.
func signalLoggers(log *slog.Logger) map[lifecycle.Signal]eventhub.Handler {
	handlers := make(map[lifecycle.Signal]eventhub.Handler, len(lifecycle.Signals()))
	for _, sig := range lifecycle.Signals() {
		level := slog.LevelInfo
		switch sig {
		case lifecycle.SignalConnecting:
			level = slog.LevelDebug
		case lifecycle.SignalDisconnected:
			level = slog.LevelWarn
		case lifecycle.SignalError:
			level = slog.LevelError
		}

		handlers[sig] = func(ctx context.Context, ev eventhub.Event) error {
			attrs := []slog.Attr{logger.Signal(ev.Signal), logger.Status(ev.Status)}
			if err := ev.Err(); err != nil {
				attrs = append(attrs, logger.Error(err))
			}
			log.LogAttrs(ctx, level, "connection "+string(ev.Signal), attrs...)
			return nil
		}
	}
	return handlers
}
