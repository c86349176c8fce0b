// Package memory provides an in-process transport for tests and local runs.
//
// It performs no I/O. Open and Close can be made to fail or stall, and Emit
// lets a test inject any lifecycle signal into the open session as if the
// remote side had produced it.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/connkit/pkg/connection"
	"github.com/dmitrymomot/connkit/pkg/lifecycle"
)

// ErrNotOpen is returned by Emit when no connection is open.
var ErrNotOpen = errors.New("memory: transport is not open")

// CloseMode controls how Close reports the close signal.
type CloseMode int

const (
	// CloseSync emits close before Close returns.
	CloseSync CloseMode = iota
	// CloseAsync emits close from a separate goroutine.
	CloseAsync
	// CloseSilent never emits close.
	CloseSilent
)

// Conn is the handle returned by Open.
type Conn struct {
	ID      string
	Options connection.Options
	closed  atomic.Bool
}

func (c *Conn) String() string {
	return c.ID
}

// Closed reports whether Close has released the connection.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}

// Option configures a Transport.
type Option func(*Transport)

// WithOpenDelay makes Open wait d before completing.
func WithOpenDelay(d time.Duration) Option {
	return func(t *Transport) { t.openDelay = d }
}

// WithCloseMode sets how the close signal is emitted.
func WithCloseMode(mode CloseMode) Option {
	return func(t *Transport) { t.closeMode = mode }
}

// WithOpenHook runs fn with the session's emitter right before Open returns.
func WithOpenHook(fn func(emit connection.SignalFunc)) Option {
	return func(t *Transport) { t.onOpen = fn }
}

// Transport implements connection.Transport[*Conn].
type Transport struct {
	mu        sync.Mutex
	emit      connection.SignalFunc
	conn      *Conn
	openErr   error
	closeErr  error
	openDelay time.Duration
	closeMode CloseMode
	onOpen    func(emit connection.SignalFunc)
	opens     int
	closes    int
	seq       int
}

// New creates a transport that opens successfully and closes synchronously.
func New(opts ...Option) *Transport {
	t := &Transport{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Open implements connection.Transport.
func (t *Transport) Open(ctx context.Context, opts connection.Options, emit connection.SignalFunc) (*Conn, error) {
	t.mu.Lock()
	t.opens++
	openErr := t.openErr
	delay := t.openDelay
	hook := t.onOpen
	t.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if openErr != nil {
		return nil, openErr
	}

	t.mu.Lock()
	t.seq++
	conn := &Conn{ID: fmt.Sprintf("mem-%d", t.seq), Options: opts}
	t.conn = conn
	t.emit = emit
	t.mu.Unlock()

	if hook != nil {
		hook(emit)
	}
	return conn, nil
}

// Close implements connection.Transport.
func (t *Transport) Close(_ context.Context, conn *Conn) error {
	t.mu.Lock()
	t.closes++
	closeErr := t.closeErr
	mode := t.closeMode
	emit := t.emit
	if closeErr == nil && conn == t.conn {
		t.conn = nil
	}
	t.mu.Unlock()

	if closeErr != nil {
		return closeErr
	}
	if conn != nil {
		conn.closed.Store(true)
	}
	if emit == nil {
		return nil
	}

	switch mode {
	case CloseSync:
		emit(lifecycle.SignalClose, nil)
	case CloseAsync:
		go emit(lifecycle.SignalClose, nil)
	}
	return nil
}

// Emit injects sig into the most recently opened session.
func (t *Transport) Emit(sig lifecycle.Signal, payload any) error {
	t.mu.Lock()
	emit := t.emit
	t.mu.Unlock()

	if emit == nil {
		return ErrNotOpen
	}
	emit(sig, payload)
	return nil
}

// SetOpenError makes every following Open fail with err; nil restores success.
func (t *Transport) SetOpenError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.openErr = err
}

// SetCloseError makes every following Close fail with err; nil restores success.
func (t *Transport) SetCloseError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeErr = err
}

// Conn returns the connection that is currently open, if any.
func (t *Transport) Conn() *Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

// Opens returns how many times Open was called.
func (t *Transport) Opens() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opens
}

// Closes returns how many times Close was called.
func (t *Transport) Closes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closes
}
