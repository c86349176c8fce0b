package pg

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/connkit/pkg/connection"
	"github.com/dmitrymomot/connkit/pkg/logger"
	"github.com/dmitrymomot/connkit/pkg/transport/probe"
)

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// Transport implements connection.Transport[*pgxpool.Pool].
type Transport struct {
	cfg    Config
	logger *slog.Logger
	pools  probe.Tracker[*pgxpool.Pool]
}

// New validates the connection string and creates a transport.
func New(cfg Config, opts ...Option) (*Transport, error) {
	if _, err := PoolConfig(cfg, connection.Options{}); err != nil {
		return nil, errors.Join(connection.ErrConfiguration, err)
	}

	t := &Transport{cfg: cfg, logger: logger.Discard()}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With(logger.Transport("postgres"))
	return t, nil
}

// Open creates the pool, pings it and applies migrations if configured.
// It does not retry.
func (t *Transport) Open(ctx context.Context, opts connection.Options, emit connection.SignalFunc) (*pgxpool.Pool, error) {
	pc, err := PoolConfig(t.cfg, opts)
	if err != nil {
		return nil, err
	}
	policy, err := opts.Backoff()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenDBConnection, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Join(ErrFailedToOpenDBConnection, err)
	}

	if t.cfg.MigrationsPath != "" {
		if err := Migrate(ctx, pool, t.cfg, t.logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	t.pools.Track(pool, probe.New(
		Healthcheck(pool),
		opts.KeepAlive(),
		policy,
		emit,
		probe.WithLogger(t.logger),
	), emit)
	return pool, nil
}

// Close stops probing, closes the pool and emits close.
func (t *Transport) Close(_ context.Context, pool *pgxpool.Pool) error {
	return t.pools.Release(pool, func() error {
		pool.Close()
		return nil
	})
}
