package eventhub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/connkit/pkg/lifecycle"
	"github.com/dmitrymomot/connkit/pkg/logger"
)

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger used to report handler failures.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithErrorReporter sets a side channel for handler failures.
func WithErrorReporter(r ErrorReporter) Option {
	return func(h *Hub) {
		h.reporter = r
	}
}

// Hub maps each recognized signal to a single handler.
// All methods are safe for concurrent use.
type Hub struct {
	handlers map[lifecycle.Signal]Handler
	logger   *slog.Logger
	reporter ErrorReporter
	mu       sync.RWMutex
}

// New creates an empty hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		handlers: make(map[lifecycle.Signal]Handler, len(lifecycle.Signals())),
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("eventhub"))
	return h
}

// Register stores handler for sig, replacing any previous one.
// Unknown signals and nil handlers are ignored; the result reports whether
// the handler was stored.
func (h *Hub) Register(sig lifecycle.Signal, handler Handler) bool {
	if !sig.Valid() || handler == nil {
		h.logger.Debug("registration ignored", logger.Signal(sig))
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[sig] = handler
	return true
}

// RegisterAll registers every entry of handlers.
func (h *Hub) RegisterAll(handlers map[lifecycle.Signal]Handler) {
	for sig, handler := range handlers {
		h.Register(sig, handler)
	}
}

// Unregister removes the handler for sig.
func (h *Hub) Unregister(sig lifecycle.Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.handlers, sig)
}

// Registered reports whether sig has a handler.
func (h *Hub) Registered(sig lifecycle.Signal) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.handlers[sig]
	return ok
}

// Dispatch invokes the handler registered for ev.Signal and reports whether
// one ran. Handler errors and panics are caught and reported.
func (h *Hub) Dispatch(ctx context.Context, ev Event) bool {
	h.mu.RLock()
	handler, ok := h.handlers[ev.Signal]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	if err := invoke(ctx, handler, ev); err != nil {
		h.report(ctx, ev, err)
	}
	return true
}

func invoke(ctx context.Context, handler Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return handler(ctx, ev)
}

func (h *Hub) report(ctx context.Context, ev Event, err error) {
	h.logger.WarnContext(ctx, "signal handler failed",
		logger.Signal(ev.Signal),
		logger.Error(err),
	)

	h.mu.RLock()
	reporter := h.reporter
	h.mu.RUnlock()
	if reporter == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.ErrorContext(ctx, "error reporter panicked",
				logger.Signal(ev.Signal),
				slog.Any("panic", r),
			)
		}
	}()
	reporter(ev, err)
}
