package backoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// Unlimited disables the retry budget.
const Unlimited = -1

// DefaultMaxInterval caps exponential delays when Config.MaxInterval is zero.
const DefaultMaxInterval = time.Minute

// exponential sequences saturate long before this many doublings.
const maxShifts = 63

// Strategy selects how delays grow between attempts.
type Strategy string

const (
	StrategyConstant    Strategy = "constant"
	StrategyExponential Strategy = "exponential"
)

// Config is the input to New.
type Config struct {
	BaseInterval   time.Duration
	MaxInterval    time.Duration // exponential cap, zero means max(DefaultMaxInterval, BaseInterval)
	MaxRetries     int           // Unlimited or >= 0
	ConnectTimeout time.Duration // zero means no timeout
	Strategy       Strategy      // empty means StrategyConstant
}

// Policy is an immutable reconnect policy. It is safe for concurrent use.
type Policy struct {
	base           time.Duration
	max            time.Duration
	maxRetries     int
	connectTimeout time.Duration
	strategy       Strategy
}

// New validates cfg and builds a Policy. Every validation error wraps
// ErrInvalidConfig.
func New(cfg Config) (*Policy, error) {
	var errs []error
	if cfg.BaseInterval <= 0 {
		errs = append(errs, ErrInvalidBaseInterval)
	}
	if cfg.MaxInterval < 0 {
		errs = append(errs, ErrInvalidMaxInterval)
	}
	if cfg.MaxRetries < 0 && cfg.MaxRetries != Unlimited {
		errs = append(errs, ErrInvalidMaxRetries)
	}
	if cfg.ConnectTimeout < 0 {
		errs = append(errs, ErrInvalidConnectTimeout)
	}

	strategy := cfg.Strategy
	switch strategy {
	case "":
		strategy = StrategyConstant
	case StrategyConstant, StrategyExponential:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy))
	}

	if len(errs) > 0 {
		return nil, errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}

	maxInterval := cfg.MaxInterval
	if maxInterval == 0 {
		maxInterval = max(DefaultMaxInterval, cfg.BaseInterval)
	}

	return &Policy{
		base:           cfg.BaseInterval,
		max:            max(maxInterval, cfg.BaseInterval),
		maxRetries:     cfg.MaxRetries,
		connectTimeout: cfg.ConnectTimeout,
		strategy:       strategy,
	}, nil
}

// MustNew works like New but panics on invalid configuration.
func MustNew(cfg Config) *Policy {
	p, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

// NextDelay returns the delay before attempt (1-indexed). Attempts below 1 return 0.
func (p *Policy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}

	b := p.sequence()
	steps := 1
	if p.strategy == StrategyExponential {
		steps = min(attempt, maxShifts)
	}

	var d time.Duration
	for range steps {
		d, _ = b.Next()
	}
	return d
}

// HasRetriesRemaining reports whether attempt is within the retry budget.
func (p *Policy) HasRetriesRemaining(attempt int) bool {
	if p.maxRetries == Unlimited {
		return true
	}
	return attempt <= p.maxRetries
}

// Wait sleeps NextDelay(attempt) or until ctx is done.
func (p *Policy) Wait(ctx context.Context, attempt int) error {
	d := p.NextDelay(attempt)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("backoff wait interrupted: %w", ctx.Err())
	}
}

// BaseInterval returns the first delay.
func (p *Policy) BaseInterval() time.Duration { return p.base }

// MaxInterval returns the cap applied to exponential delays.
func (p *Policy) MaxInterval() time.Duration { return p.max }

// MaxRetries returns the retry budget, or Unlimited.
func (p *Policy) MaxRetries() int { return p.maxRetries }

// ConnectTimeout returns the per-attempt connect timeout.
func (p *Policy) ConnectTimeout() time.Duration { return p.connectTimeout }

// Strategy returns the delay strategy.
func (p *Policy) Strategy() Strategy { return p.strategy }

// Unlimited reports whether the retry budget is disabled.
func (p *Policy) Unlimited() bool {
	return p.maxRetries == Unlimited
}

func (p *Policy) sequence() retry.Backoff {
	if p.strategy == StrategyExponential {
		return retry.WithCappedDuration(p.max, retry.NewExponential(p.base))
	}
	return retry.NewConstant(p.base)
}
