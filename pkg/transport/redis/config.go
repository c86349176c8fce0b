package redis

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/connkit/pkg/connection"
)

// Config holds the settings connection.Options does not cover.
type Config struct {
	ConnectionURL   string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0" yaml:"url"` // ConnectionURL is the URL of the database. It should be in the format "redis://:password@localhost:6379/0"
	ClientName      string        `env:"REDIS_CLIENT_NAME" yaml:"clientName"`                        // ClientName is sent with CLIENT SETNAME on every connection.
	MinIdleConns    int           `env:"REDIS_MIN_IDLE_CONNS" yaml:"minIdleConns"`                   // MinIdleConns is the number of idle connections kept open.
	ConnMaxIdleTime time.Duration `env:"REDIS_CONN_MAX_IDLE_TIME" yaml:"connMaxIdleTime"`            // ConnMaxIdleTime is how long a connection may stay idle.
}

// ClientOptions parses cfg.ConnectionURL and applies cfg and opts on top.
func ClientOptions(cfg Config, opts connection.Options) (*redis.Options, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	ro, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	if cfg.ClientName != "" {
		ro.ClientName = cfg.ClientName
	}
	if cfg.MinIdleConns > 0 {
		ro.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.ConnMaxIdleTime > 0 {
		ro.ConnMaxIdleTime = cfg.ConnMaxIdleTime
	}
	if opts.PoolSize > 0 {
		ro.PoolSize = opts.PoolSize
	}
	if d := opts.ConnectTimeout(); d > 0 {
		ro.DialTimeout = d
	}
	return ro, nil
}
