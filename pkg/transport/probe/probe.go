// Package probe turns periodic health checks into lifecycle signals for
// drivers that do not report connectivity changes on their own.
//
// A Prober pings at a fixed interval. The first failed ping emits
// disconnected; it then retries with the delays of a backoff.Policy and emits
// reconnected once a ping succeeds again. When the policy's retry budget runs
// out it emits error and falls back to the regular interval.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/connkit/pkg/backoff"
	"github.com/dmitrymomot/connkit/pkg/connection"
	"github.com/dmitrymomot/connkit/pkg/lifecycle"
	"github.com/dmitrymomot/connkit/pkg/logger"
)

// ErrUnreachable wraps the last ping error once the retry budget is spent.
var ErrUnreachable = errors.New("probe: remote unreachable")

// Pinger checks the remote side.
type Pinger func(ctx context.Context) error

// Option configures a Prober.
type Option func(*Prober)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Prober) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithPingTimeout bounds each ping. Defaults to the probe interval.
func WithPingTimeout(d time.Duration) Option {
	return func(p *Prober) {
		p.timeout = d
	}
}

// Prober runs a ping loop in the background.
type Prober struct {
	ping     Pinger
	interval time.Duration
	timeout  time.Duration
	policy   *backoff.Policy
	emit     connection.SignalFunc
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a stopped prober. An interval of zero or less disables probing.
func New(ping Pinger, interval time.Duration, policy *backoff.Policy, emit connection.SignalFunc, opts ...Option) *Prober {
	p := &Prober{
		ping:     ping,
		interval: interval,
		policy:   policy,
		emit:     emit,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.timeout <= 0 {
		p.timeout = interval
	}
	p.logger = p.logger.With(logger.Component("probe"))
	return p
}

// Start launches the ping loop. It is a no-op when probing is disabled or
// the loop is already running.
func (p *Prober) Start() {
	if p.interval <= 0 || p.ping == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop ends the ping loop and waits for it to exit. No signal is emitted
// after Stop returns.
func (p *Prober) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the ping loop is active.
func (p *Prober) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Prober) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := p.check(ctx)
		if ctx.Err() != nil {
			return
		}
		switch {
		case err == nil && !healthy:
			healthy = true
			p.signal(ctx, lifecycle.SignalReconnected, nil)
		case err != nil && healthy:
			healthy = false
			p.logger.WarnContext(ctx, "ping failed", logger.Error(err))
			p.signal(ctx, lifecycle.SignalDisconnected, err)
			healthy = p.reacquire(ctx, err)
		}
	}
}

// reacquire retries the ping on the policy's schedule and reports whether
// the remote side answered again before the budget ran out.
func (p *Prober) reacquire(ctx context.Context, lastErr error) bool {
	for attempt := 1; p.policy.HasRetriesRemaining(attempt); attempt++ {
		if err := p.policy.Wait(ctx, attempt); err != nil {
			return false
		}

		lastErr = p.check(ctx)
		if ctx.Err() != nil {
			return false
		}
		if lastErr == nil {
			p.logger.InfoContext(ctx, "ping recovered", logger.Attempt(attempt))
			p.signal(ctx, lifecycle.SignalReconnected, nil)
			return true
		}
		p.logger.DebugContext(ctx, "ping retry failed", logger.Attempt(attempt), logger.Error(lastErr))
	}

	p.signal(ctx, lifecycle.SignalError, fmt.Errorf("%w: %w", ErrUnreachable, lastErr))
	return false
}

func (p *Prober) check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.ping(ctx)
}

// signal emits unless the loop is being stopped.
func (p *Prober) signal(ctx context.Context, sig lifecycle.Signal, payload any) {
	if ctx.Err() != nil {
		return
	}
	p.emit(sig, payload)
}
