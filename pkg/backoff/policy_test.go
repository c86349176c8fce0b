package backoff_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/connkit/pkg/backoff"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     backoff.Config
		wantErr error
	}{
		{
			name:    "zero base interval",
			cfg:     backoff.Config{BaseInterval: 0, MaxRetries: 3},
			wantErr: backoff.ErrInvalidBaseInterval,
		},
		{
			name:    "negative base interval",
			cfg:     backoff.Config{BaseInterval: -time.Second, MaxRetries: 3},
			wantErr: backoff.ErrInvalidBaseInterval,
		},
		{
			name:    "negative max retries",
			cfg:     backoff.Config{BaseInterval: time.Second, MaxRetries: -2},
			wantErr: backoff.ErrInvalidMaxRetries,
		},
		{
			name:    "negative connect timeout",
			cfg:     backoff.Config{BaseInterval: time.Second, ConnectTimeout: -1},
			wantErr: backoff.ErrInvalidConnectTimeout,
		},
		{
			name:    "negative max interval",
			cfg:     backoff.Config{BaseInterval: time.Second, MaxInterval: -1},
			wantErr: backoff.ErrInvalidMaxInterval,
		},
		{
			name:    "unknown strategy",
			cfg:     backoff.Config{BaseInterval: time.Second, Strategy: "fibonacci"},
			wantErr: backoff.ErrUnknownStrategy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := backoff.New(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, backoff.ErrInvalidConfig)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_Valid(t *testing.T) {
	t.Parallel()

	p, err := backoff.New(backoff.Config{
		BaseInterval:   time.Second,
		MaxRetries:     backoff.Unlimited,
		ConnectTimeout: 30 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, backoff.StrategyConstant, p.Strategy())
	assert.Equal(t, time.Second, p.BaseInterval())
	assert.Equal(t, backoff.DefaultMaxInterval, p.MaxInterval())
	assert.Equal(t, 30*time.Second, p.ConnectTimeout())
	assert.True(t, p.Unlimited())

	p, err = backoff.New(backoff.Config{BaseInterval: time.Second, MaxRetries: 0})
	require.NoError(t, err, "zero retries is a valid budget")
	assert.False(t, p.HasRetriesRemaining(1))
}

func TestMustNew_Panics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		backoff.MustNew(backoff.Config{})
	})
}

func TestNextDelay_Constant(t *testing.T) {
	t.Parallel()

	p := backoff.MustNew(backoff.Config{BaseInterval: 30 * time.Second, MaxRetries: 240})

	assert.Equal(t, time.Duration(0), p.NextDelay(0))
	assert.Equal(t, time.Duration(0), p.NextDelay(-5))
	for _, attempt := range []int{1, 2, 10, 240, 10_000} {
		assert.Equal(t, 30*time.Second, p.NextDelay(attempt), "attempt %d", attempt)
	}
}

func TestNextDelay_Exponential(t *testing.T) {
	t.Parallel()

	p := backoff.MustNew(backoff.Config{
		BaseInterval: 500 * time.Millisecond,
		MaxInterval:  5 * time.Second,
		MaxRetries:   10,
		Strategy:     backoff.StrategyExponential,
	})

	attempts := []int{1, 2, 3, 4, 5, 100}
	want := []time.Duration{
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
		4 * time.Second,
		5 * time.Second, // capped
		5 * time.Second,
	}

	for i, attempt := range attempts {
		assert.Equal(t, want[i], p.NextDelay(attempt), "attempt %d", attempt)
	}
}

func TestNextDelay_MonotonicAndBounded(t *testing.T) {
	t.Parallel()

	for _, strategy := range []backoff.Strategy{backoff.StrategyConstant, backoff.StrategyExponential} {
		p := backoff.MustNew(backoff.Config{
			BaseInterval: 100 * time.Millisecond,
			MaxRetries:   backoff.Unlimited,
			Strategy:     strategy,
		})

		prev := time.Duration(0)
		for attempt := 1; attempt <= 200; attempt++ {
			d := p.NextDelay(attempt)
			assert.GreaterOrEqual(t, d, prev, "%s attempt %d", strategy, attempt)
			assert.LessOrEqual(t, d, p.MaxInterval(), "%s attempt %d", strategy, attempt)
			prev = d
		}
	}
}

func TestHasRetriesRemaining(t *testing.T) {
	t.Parallel()

	p := backoff.MustNew(backoff.Config{BaseInterval: time.Second, MaxRetries: 2})
	assert.True(t, p.HasRetriesRemaining(1))
	assert.True(t, p.HasRetriesRemaining(2))
	assert.False(t, p.HasRetriesRemaining(3))

	unlimited := backoff.MustNew(backoff.Config{BaseInterval: time.Second, MaxRetries: backoff.Unlimited})
	assert.True(t, unlimited.HasRetriesRemaining(1_000_000))
}

func TestWait(t *testing.T) {
	t.Parallel()

	p := backoff.MustNew(backoff.Config{BaseInterval: 10 * time.Millisecond, MaxRetries: 1})

	start := time.Now()
	require.NoError(t, p.Wait(context.Background(), 1))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)

	slow := backoff.MustNew(backoff.Config{BaseInterval: time.Hour, MaxRetries: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := slow.Wait(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
