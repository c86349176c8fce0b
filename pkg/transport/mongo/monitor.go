package mongo

import (
	"log/slog"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/v2/event"

	"github.com/dmitrymomot/connkit/pkg/connection"
	"github.com/dmitrymomot/connkit/pkg/lifecycle"
	"github.com/dmitrymomot/connkit/pkg/logger"
)

// HeartbeatMonitor folds per-server heartbeat events into deployment level
// disconnected and reconnected signals. It only emits while armed.
type HeartbeatMonitor struct {
	emit   connection.SignalFunc
	logger *slog.Logger

	mu      sync.Mutex
	servers map[string]bool
	up      bool
	armed   bool
}

// NewHeartbeatMonitor creates a disarmed monitor.
func NewHeartbeatMonitor(emit connection.SignalFunc, log *slog.Logger) *HeartbeatMonitor {
	if log == nil {
		log = logger.Discard()
	}
	return &HeartbeatMonitor{
		emit:    emit,
		logger:  log,
		servers: make(map[string]bool),
	}
}

// ServerMonitor returns the driver hooks feeding this monitor.
func (m *HeartbeatMonitor) ServerMonitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerHeartbeatSucceeded: func(e *event.ServerHeartbeatSucceededEvent) {
			m.succeeded(serverAddress(e.ConnectionID))
		},
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			m.failed(serverAddress(e.ConnectionID), e.Failure)
		},
	}
}

// Arm starts emitting. The deployment is assumed reachable at that point.
func (m *HeartbeatMonitor) Arm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armed = true
	m.up = true
}

// Disarm stops emitting, so heartbeats failing during shutdown stay quiet.
func (m *HeartbeatMonitor) Disarm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armed = false
}

// Up reports whether at least one server answered its last heartbeat.
func (m *HeartbeatMonitor) Up() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.up
}

func (m *HeartbeatMonitor) succeeded(addr string) {
	m.mu.Lock()
	m.servers[addr] = true
	recovered := m.armed && !m.up
	if m.armed {
		m.up = true
	}
	m.mu.Unlock()

	if recovered {
		m.logger.Info("mongo deployment reachable again", slog.String("server", addr))
		m.emit(lifecycle.SignalReconnected, addr)
	}
}

func (m *HeartbeatMonitor) failed(addr string, err error) {
	m.mu.Lock()
	m.servers[addr] = false
	lost := m.armed && m.up && !m.anyHealthy()
	if lost {
		m.up = false
	}
	m.mu.Unlock()

	if lost {
		m.logger.Warn("mongo deployment unreachable", slog.String("server", addr), logger.Error(err))
		m.emit(lifecycle.SignalDisconnected, err)
	}
}

// anyHealthy must be called with mu held.
func (m *HeartbeatMonitor) anyHealthy() bool {
	for _, ok := range m.servers {
		if ok {
			return true
		}
	}
	return false
}

// serverAddress strips the connection counter the driver appends to a
// heartbeat's connection id, as in "db1:27017[-3]".
func serverAddress(connectionID string) string {
	addr, _, _ := strings.Cut(connectionID, "[")
	return addr
}
