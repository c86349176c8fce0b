package mongo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/event"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/dmitrymomot/connkit/pkg/connection"
	"github.com/dmitrymomot/connkit/pkg/lifecycle"
	"github.com/dmitrymomot/connkit/pkg/transport/mongo"
)

func TestNew_RequiresURL(t *testing.T) {
	t.Parallel()

	tr, err := mongo.New(mongo.Config{})
	assert.ErrorIs(t, err, connection.ErrConfiguration)
	assert.ErrorIs(t, err, mongo.ErrMissingURL)
	assert.Nil(t, tr)
}

func TestOpen_InvalidURL(t *testing.T) {
	t.Parallel()

	tr, err := mongo.New(mongo.Config{ConnectionURL: "http://localhost:27017"})
	require.NoError(t, err)

	client, err := tr.Open(context.Background(), connection.DefaultOptions(), func(lifecycle.Signal, any) {})
	assert.ErrorIs(t, err, mongo.ErrFailedToConnectToMongo)
	assert.Nil(t, client)
}

func TestClientOptions(t *testing.T) {
	t.Parallel()

	cfg := mongo.Config{
		ConnectionURL:   "mongodb://db1:27017,db2:27017/?replicaSet=rs0",
		AppName:         "connwatch",
		MinPoolSize:     10,
		MaxConnIdleTime: time.Minute,
		RetryWrites:     true,
	}
	opts := connection.DefaultOptions()
	opts.ReadPreference = connection.ReadSecondaryPreferred

	co := mongo.ClientOptions(cfg, opts)
	require.NoError(t, co.Validate())

	assert.Equal(t, []string{"db1:27017", "db2:27017"}, co.Hosts)
	require.NotNil(t, co.ConnectTimeout)
	assert.Equal(t, 30*time.Second, *co.ConnectTimeout)
	require.NotNil(t, co.MaxPoolSize)
	assert.Equal(t, uint64(5), *co.MaxPoolSize)
	require.NotNil(t, co.MinPoolSize)
	assert.Equal(t, uint64(5), *co.MinPoolSize, "min pool size is capped by pool size")
	require.NotNil(t, co.HeartbeatInterval)
	assert.Equal(t, 10*time.Second, *co.HeartbeatInterval)
	require.NotNil(t, co.AppName)
	assert.Equal(t, "connwatch", *co.AppName)
	assert.Equal(t, readpref.SecondaryPreferredMode, co.ReadPreference.Mode())
}

func TestClientOptions_Bounds(t *testing.T) {
	t.Parallel()

	opts := connection.DefaultOptions()
	opts.KeepAliveMS = 100
	opts.PoolSize = 0
	opts.ConnectTimeoutMS = 0

	co := mongo.ClientOptions(mongo.Config{ConnectionURL: "mongodb://localhost", MinPoolSize: 2}, opts)
	require.NoError(t, co.Validate())

	assert.Equal(t, mongo.MinHeartbeatInterval, *co.HeartbeatInterval)
	assert.Nil(t, co.MaxPoolSize)
	assert.Equal(t, uint64(2), *co.MinPoolSize)
	assert.Nil(t, co.ConnectTimeout)

	opts.KeepAliveMS = 0
	co = mongo.ClientOptions(mongo.Config{ConnectionURL: "mongodb://localhost"}, opts)
	assert.Nil(t, co.HeartbeatInterval)
}

func TestReadPref(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   connection.ReadPreference
		want readpref.Mode
	}{
		{connection.ReadPrimary, readpref.PrimaryMode},
		{connection.ReadPrimaryPreferred, readpref.PrimaryPreferredMode},
		{connection.ReadSecondary, readpref.SecondaryMode},
		{connection.ReadSecondaryPreferred, readpref.SecondaryPreferredMode},
		{connection.ReadNearest, readpref.NearestMode},
		{"", readpref.PrimaryMode},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mongo.ReadPref(tt.in).Mode(), tt.in)
	}
}

type sink struct {
	mu      sync.Mutex
	signals []lifecycle.Signal
}

func (s *sink) emit(sig lifecycle.Signal, _ any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = append(s.signals, sig)
}

func (s *sink) got() []lifecycle.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]lifecycle.Signal(nil), s.signals...)
}

func TestHeartbeatMonitor(t *testing.T) {
	t.Parallel()

	s := &sink{}
	m := mongo.NewHeartbeatMonitor(s.emit, nil)
	sm := m.ServerMonitor()

	ok := func(id string) {
		sm.ServerHeartbeatSucceeded(&event.ServerHeartbeatSucceededEvent{ConnectionID: id})
	}
	fail := func(id string) {
		sm.ServerHeartbeatFailed(&event.ServerHeartbeatFailedEvent{ConnectionID: id, Failure: errors.New("timeout")})
	}

	// Disarmed: state is tracked but nothing is emitted.
	ok("db1:27017[-1]")
	fail("db1:27017[-2]")
	assert.Empty(t, s.got())

	m.Arm()
	ok("db1:27017[-3]")
	ok("db2:27017[-1]")
	assert.True(t, m.Up())

	fail("db1:27017[-4]")
	assert.Empty(t, s.got(), "db2 is still healthy")

	fail("db2:27017[-2]")
	fail("db2:27017[-3]")
	assert.False(t, m.Up())
	assert.Equal(t, []lifecycle.Signal{lifecycle.SignalDisconnected}, s.got())

	ok("db2:27017[-4]")
	ok("db1:27017[-5]")
	assert.True(t, m.Up())
	assert.Equal(t, []lifecycle.Signal{lifecycle.SignalDisconnected, lifecycle.SignalReconnected}, s.got())

	m.Disarm()
	fail("db1:27017[-6]")
	fail("db2:27017[-5]")
	assert.Len(t, s.got(), 2)
}
