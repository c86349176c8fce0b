package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/connkit/pkg/connection"
	"github.com/dmitrymomot/connkit/pkg/lifecycle"
	"github.com/dmitrymomot/connkit/pkg/transport/redis"
)

func TestClientOptions(t *testing.T) {
	t.Parallel()

	opts := connection.DefaultOptions()
	opts.PoolSize = 12
	opts.ConnectTimeoutMS = 1500

	ro, err := redis.ClientOptions(redis.Config{
		ConnectionURL:   "redis://:secret@cache:6380/2",
		ClientName:      "connwatch",
		MinIdleConns:    2,
		ConnMaxIdleTime: time.Minute,
	}, opts)
	require.NoError(t, err)

	assert.Equal(t, "cache:6380", ro.Addr)
	assert.Equal(t, "secret", ro.Password)
	assert.Equal(t, 2, ro.DB)
	assert.Equal(t, 12, ro.PoolSize)
	assert.Equal(t, 1500*time.Millisecond, ro.DialTimeout)
	assert.Equal(t, "connwatch", ro.ClientName)
	assert.Equal(t, 2, ro.MinIdleConns)
	assert.Equal(t, time.Minute, ro.ConnMaxIdleTime)
}

func TestClientOptions_Errors(t *testing.T) {
	t.Parallel()

	_, err := redis.ClientOptions(redis.Config{}, connection.DefaultOptions())
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

	_, err = redis.ClientOptions(redis.Config{ConnectionURL: "mysql://localhost"}, connection.DefaultOptions())
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
}

func TestNew(t *testing.T) {
	t.Parallel()

	tr, err := redis.New(redis.Config{ConnectionURL: "redis://localhost:6379/0"})
	require.NoError(t, err)
	assert.NotNil(t, tr)

	tr, err = redis.New(redis.Config{ConnectionURL: "::bad"})
	assert.ErrorIs(t, err, connection.ErrConfiguration)
	assert.Nil(t, tr)
}

func TestOpen_Unreachable(t *testing.T) {
	t.Parallel()

	tr, err := redis.New(redis.Config{ConnectionURL: "redis://127.0.0.1:1/0"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	opts := connection.DefaultOptions()
	opts.ConnectTimeoutMS = 200

	client, err := tr.Open(ctx, opts, func(lifecycle.Signal, any) {})
	assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	assert.Nil(t, client)
}
