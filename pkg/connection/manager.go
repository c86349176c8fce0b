package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/connkit/pkg/backoff"
	"github.com/dmitrymomot/connkit/pkg/eventhub"
	"github.com/dmitrymomot/connkit/pkg/lifecycle"
	"github.com/dmitrymomot/connkit/pkg/logger"
)

type operation int

const (
	opNone operation = iota
	opConnect
	opDisconnect
)

type queuedSignal struct {
	sig     lifecycle.Signal
	payload any
}

// Manager owns one logical connection over a Transport and keeps its
// lifecycle state in sync with the signals the transport emits.
// All methods are safe for concurrent use.
type Manager[H any] struct {
	transport Transport[H]
	opts      Options
	policy    *backoff.Policy
	hub       *eventhub.Hub
	state     *lifecycle.State
	logger    *slog.Logger

	// sigMu admits one Apply+Dispatch pair at a time. Lock order: sigMu, then mu.
	sigMu sync.Mutex

	mu       sync.Mutex
	handle   H
	live     bool // a transport handle is held
	session  string
	attempts int
	early    []queuedSignal // emitted during Open, replayed after open
	pending  operation
	settled  chan struct{} // closed when the pending operation finishes
	closed   chan struct{} // closed when the session's close signal is processed
}

// New validates cfg and creates a disconnected manager. Validation failures
// wrap ErrConfiguration.
func New[H any](transport Transport[H], cfg Options, opts ...Option) (*Manager[H], error) {
	if transport == nil {
		return nil, errors.Join(ErrConfiguration, errNilTransport)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := settings{logger: logger.Discard()}
	for _, opt := range opts {
		opt(&s)
	}

	policy := s.policy
	if policy == nil {
		var err error
		if policy, err = cfg.Backoff(); err != nil {
			return nil, err
		}
	}

	hub := eventhub.New(
		eventhub.WithLogger(s.logger),
		eventhub.WithErrorReporter(s.reporter),
	)
	hub.RegisterAll(s.events)

	return &Manager[H]{
		transport: transport,
		opts:      cfg.normalize(),
		policy:    policy,
		hub:       hub,
		state:     lifecycle.NewState(),
		logger:    s.logger.With(logger.Component("connection")),
	}, nil
}

// Connect opens a new session and returns the transport handle. If the
// manager is already connected the current handle is returned. A session
// that still holds a handle without being connected is closed first.
//
// A failed Open is reported through the error signal and returned wrapped in
// ErrTransport; it is not retried.
func (m *Manager[H]) Connect(ctx context.Context) (H, error) {
	var zero H

	m.mu.Lock()
	if m.pending != opNone {
		m.mu.Unlock()
		return zero, ErrOperationInProgress
	}
	if m.live && m.state.IsConnected() {
		h := m.handle
		m.mu.Unlock()
		return h, nil
	}
	m.begin(opConnect)
	stale := m.live
	m.mu.Unlock()

	defer m.finish()

	if stale {
		m.logger.InfoContext(ctx, "closing stale session before reconnect", logger.Status(m.state.Status()))
		if err := m.teardown(ctx); err != nil {
			return zero, err
		}
	}

	session := uuid.NewString()
	m.mu.Lock()
	m.session = session
	m.attempts = 0
	m.early = nil
	m.mu.Unlock()

	ctx = logger.WithSessionID(ctx, session)
	m.record(ctx, session, lifecycle.SignalConnecting, nil)

	openCtx := ctx
	if timeout := m.opts.ConnectTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		openCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	h, err := m.transport.Open(openCtx, m.opts, m.sink(session))
	if err != nil {
		err = errors.Join(ErrTransport, err)
		m.record(ctx, session, lifecycle.SignalError, err)

		m.mu.Lock()
		if m.session == session {
			m.session = ""
			m.early = nil
		}
		m.mu.Unlock()

		m.logger.WarnContext(ctx, "connect failed", logger.Error(err), logger.Duration(time.Since(start)))
		return zero, err
	}

	m.opened(ctx, session, h)
	m.logger.InfoContext(ctx, "connected", logger.Duration(time.Since(start)))
	return h, nil
}

// Disconnect closes the current session and waits for the transport's close
// signal. It waits for a pending Connect to settle first. Without a live
// handle it returns nil and does not touch the transport.
//
// The check is on the handle, not the status: after an error or
// disconnected signal the handle is still held, so Disconnect closes it.
func (m *Manager[H]) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	for m.pending == opConnect {
		settled := m.settled
		m.mu.Unlock()
		select {
		case <-settled:
		case <-ctx.Done():
			return ctx.Err()
		}
		m.mu.Lock()
	}
	if m.pending == opDisconnect {
		m.mu.Unlock()
		return ErrOperationInProgress
	}
	if !m.live {
		m.mu.Unlock()
		return nil
	}
	m.begin(opDisconnect)
	ctx = logger.WithSessionID(ctx, m.session)
	m.mu.Unlock()

	defer m.finish()

	start := time.Now()
	if err := m.teardown(ctx); err != nil {
		m.logger.WarnContext(ctx, "disconnect failed", logger.Error(err))
		return err
	}
	m.logger.InfoContext(ctx, "disconnected", logger.Duration(time.Since(start)))
	return nil
}

// SetEvents registers handlers for the given signals. Later calls overwrite
// earlier registrations for the same signal.
func (m *Manager[H]) SetEvents(events map[lifecycle.Signal]eventhub.Handler) {
	m.hub.RegisterAll(events)
}

// On registers a single handler and reports whether sig is recognized.
func (m *Manager[H]) On(sig lifecycle.Signal, h eventhub.Handler) bool {
	return m.hub.Register(sig, h)
}

// Status returns the last committed status.
func (m *Manager[H]) Status() lifecycle.Status {
	return m.state.Status()
}

// IsConnected reports whether the status is connected.
func (m *Manager[H]) IsConnected() bool {
	return m.state.IsConnected()
}

// Counts returns a snapshot of how many times each signal has been processed.
func (m *Manager[H]) Counts() map[lifecycle.Signal]uint64 {
	return m.state.Counts()
}

// Count returns how many times sig has been processed.
func (m *Manager[H]) Count(sig lifecycle.Signal) uint64 {
	return m.state.Count(sig)
}

// Session returns the current session id, or "" when no session is open.
func (m *Manager[H]) Session() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Handle returns the current transport handle, if any.
func (m *Manager[H]) Handle() (H, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle, m.live
}

// Attempts returns the number of reconnects seen in the current session.
func (m *Manager[H]) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// Options returns the normalized options the manager was built with.
func (m *Manager[H]) Options() Options {
	return m.opts
}

// Policy returns the reconnect policy.
func (m *Manager[H]) Policy() *backoff.Policy {
	return m.policy
}

// begin must be called with mu held.
func (m *Manager[H]) begin(op operation) {
	m.pending = op
	m.settled = make(chan struct{})
}

func (m *Manager[H]) finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = opNone
	close(m.settled)
}

// teardown closes the live handle and waits for its close signal.
// The wait channel is armed before Transport.Close runs, so a close emitted
// synchronously inside Close is not missed.
func (m *Manager[H]) teardown(ctx context.Context) error {
	m.mu.Lock()
	if !m.live {
		m.mu.Unlock()
		return nil
	}
	h := m.handle
	closed := make(chan struct{})
	m.closed = closed
	m.mu.Unlock()

	if err := m.transport.Close(ctx, h); err != nil {
		m.mu.Lock()
		if m.closed == closed {
			m.closed = nil
		}
		m.mu.Unlock()
		return errors.Join(ErrTransport, err)
	}

	select {
	case <-closed:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for close signal: %w", ctx.Err())
	}
}

func (m *Manager[H]) sink(session string) SignalFunc {
	return func(sig lifecycle.Signal, payload any) {
		m.receive(session, sig, payload)
	}
}

// receive handles a transport-emitted signal.
func (m *Manager[H]) receive(session string, sig lifecycle.Signal, payload any) {
	ctx := logger.WithSessionID(context.Background(), session)
	if !sig.Valid() {
		m.logger.WarnContext(ctx, "unknown signal ignored", logger.Signal(sig))
		return
	}

	m.sigMu.Lock()
	defer m.sigMu.Unlock()

	m.mu.Lock()
	if session != m.session {
		m.mu.Unlock()
		m.logger.DebugContext(ctx, "signal from finished session dropped", logger.Signal(sig))
		return
	}
	if !m.live {
		m.early = append(m.early, queuedSignal{sig: sig, payload: payload})
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.handleLocked(ctx, session, sig, payload)
}

// record commits a signal originated by the manager itself.
func (m *Manager[H]) record(ctx context.Context, session string, sig lifecycle.Signal, payload any) {
	m.sigMu.Lock()
	defer m.sigMu.Unlock()
	m.commit(ctx, session, sig, payload)
}

// opened publishes the handle, commits open and replays signals the
// transport emitted while Open was still running.
func (m *Manager[H]) opened(ctx context.Context, session string, h H) {
	m.sigMu.Lock()
	defer m.sigMu.Unlock()

	m.mu.Lock()
	m.handle = h
	m.live = true
	early := m.early
	m.early = nil
	m.mu.Unlock()

	m.commit(ctx, session, lifecycle.SignalOpen, h)

	for _, q := range early {
		if m.Session() != session {
			return
		}
		m.handleLocked(ctx, session, q.sig, q.payload)
	}
}

// handleLocked applies the reconnect budget and commits sig.
// sigMu must be held.
func (m *Manager[H]) handleLocked(ctx context.Context, session string, sig lifecycle.Signal, payload any) {
	if sig == lifecycle.SignalReconnected {
		m.mu.Lock()
		m.attempts++
		attempt := m.attempts
		m.mu.Unlock()

		if err := m.admitReconnect(attempt); err != nil {
			m.logger.WarnContext(ctx, "reconnect suppressed", logger.Attempt(attempt), logger.Error(err))
			m.commit(ctx, session, lifecycle.SignalError, err)
			return
		}
		m.logger.InfoContext(ctx, "reconnected", logger.Attempt(attempt))
	}

	m.commit(ctx, session, sig, payload)

	if sig == lifecycle.SignalClose {
		m.endSession(session)
	}
}

func (m *Manager[H]) admitReconnect(attempt int) error {
	if !m.opts.AutoReconnect {
		return fmt.Errorf("%w: auto reconnect is disabled", ErrRetriesExhausted)
	}
	if !m.policy.HasRetriesRemaining(attempt) {
		return fmt.Errorf("%w: attempt %d exceeds limit of %d", ErrRetriesExhausted, attempt, m.policy.MaxRetries())
	}
	return nil
}

// commit applies sig to the state and then dispatches it. sigMu must be held.
func (m *Manager[H]) commit(ctx context.Context, session string, sig lifecycle.Signal, payload any) {
	status, err := m.state.Apply(sig)
	if err != nil {
		m.logger.ErrorContext(ctx, "signal rejected by state", logger.Signal(sig), logger.Error(err))
		return
	}

	m.logger.DebugContext(ctx, "signal applied",
		logger.Signal(sig),
		logger.Status(status),
		logger.Payload(payload),
	)

	m.hub.Dispatch(ctx, eventhub.Event{
		Signal:  sig,
		Payload: payload,
		Session: session,
		Status:  status,
		At:      time.Now(),
	})
}

func (m *Manager[H]) endSession(session string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != session {
		return
	}

	var zero H
	m.handle = zero
	m.live = false
	m.session = ""
	m.early = nil
	if m.closed != nil {
		close(m.closed)
		m.closed = nil
	}
}
