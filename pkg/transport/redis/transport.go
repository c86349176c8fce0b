package redis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

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

// Transport implements connection.Transport[*redis.Client].
type Transport struct {
	cfg     Config
	logger  *slog.Logger
	clients probe.Tracker[*redis.Client]
}

// New validates the connection URL and creates a transport.
func New(cfg Config, opts ...Option) (*Transport, error) {
	if _, err := ClientOptions(cfg, connection.Options{}); err != nil {
		return nil, errors.Join(connection.ErrConfiguration, err)
	}

	t := &Transport{cfg: cfg, logger: logger.Discard()}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With(logger.Transport("redis"))
	return t, nil
}

// Open creates a client and pings once. It does not retry.
func (t *Transport) Open(ctx context.Context, opts connection.Options, emit connection.SignalFunc) (*redis.Client, error) {
	ro, err := ClientOptions(t.cfg, opts)
	if err != nil {
		return nil, err
	}
	policy, err := opts.Backoff()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(ro)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrRedisNotReady, err)
	}

	t.clients.Track(client, probe.New(
		Healthcheck(client),
		opts.KeepAlive(),
		policy,
		emit,
		probe.WithLogger(t.logger),
	), emit)
	return client, nil
}

// Close stops probing, closes the client and emits close.
func (t *Transport) Close(_ context.Context, client *redis.Client) error {
	return t.clients.Release(client, func() error {
		if err := client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return err
		}
		return nil
	})
}
