package mongo

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/connkit/pkg/connection"
	"github.com/dmitrymomot/connkit/pkg/lifecycle"
	"github.com/dmitrymomot/connkit/pkg/logger"
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

type session struct {
	monitor *HeartbeatMonitor
	emit    connection.SignalFunc
}

// Transport implements connection.Transport[*mongo.Client].
type Transport struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[*mongo.Client]session
}

// New validates cfg and creates a transport.
func New(cfg Config, opts ...Option) (*Transport, error) {
	if cfg.ConnectionURL == "" {
		return nil, errors.Join(connection.ErrConfiguration, ErrMissingURL)
	}

	t := &Transport{
		cfg:      cfg,
		logger:   logger.Discard(),
		sessions: make(map[*mongo.Client]session),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With(logger.Transport("mongo"))
	return t, nil
}

// Open connects and pings once. It does not retry.
func (t *Transport) Open(ctx context.Context, opts connection.Options, emit connection.SignalFunc) (*mongo.Client, error) {
	monitor := NewHeartbeatMonitor(emit, t.logger)
	co := ClientOptions(t.cfg, opts).SetServerMonitor(monitor.ServerMonitor())

	client, err := mongo.Connect(co)
	if err != nil {
		return nil, errors.Join(ErrFailedToConnectToMongo, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, errors.Join(ErrFailedToConnectToMongo, err)
	}

	monitor.Arm()
	t.mu.Lock()
	t.sessions[client] = session{monitor: monitor, emit: emit}
	t.mu.Unlock()
	return client, nil
}

// Close disconnects the client and emits close.
func (t *Transport) Close(ctx context.Context, client *mongo.Client) error {
	t.mu.Lock()
	s, ok := t.sessions[client]
	t.mu.Unlock()

	if ok {
		s.monitor.Disarm()
	}
	if err := client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		if ok {
			s.monitor.Arm()
		}
		return err
	}
	if !ok {
		return nil
	}

	t.mu.Lock()
	delete(t.sessions, client)
	t.mu.Unlock()
	s.emit(lifecycle.SignalClose, nil)
	return nil
}
