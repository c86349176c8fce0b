package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/connkit/pkg/connection"
	"github.com/dmitrymomot/connkit/pkg/httpserver"
	"github.com/dmitrymomot/connkit/pkg/transport/mongo"
	"github.com/dmitrymomot/connkit/pkg/transport/pg"
	"github.com/dmitrymomot/connkit/pkg/transport/redis"
)

const (
	driverMemory   = "memory"
	driverMongo    = "mongo"
	driverRedis    = "redis"
	driverPostgres = "postgres"
)

// envPrefix namespaces every variable, e.g. CONNWATCH_CONN_POOL_SIZE.
const envPrefix = "CONNWATCH_"

type Config struct {
	Driver   string `env:"DRIVER" envDefault:"memory" yaml:"driver"`
	Env      string `env:"ENV" envDefault:"development" yaml:"env"`
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	Connection connection.Options `envPrefix:"CONN_" yaml:"options"`
	HTTP       httpserver.Config  `yaml:"http"`
	Mongo      mongo.Config       `yaml:"mongo"`
	Redis      redis.Config       `yaml:"redis"`
	Postgres   pg.Config          `yaml:"postgres"`
}

func (c Config) driver() (string, error) {
	switch d := strings.ToLower(strings.TrimSpace(c.Driver)); d {
	case driverMemory, driverMongo, driverRedis:
		return d, nil
	case driverPostgres, "pg", "postgresql":
		return driverPostgres, nil
	default:
		return "", fmt.Errorf("%w: unknown driver %q", connection.ErrConfiguration, c.Driver)
	}
}

// level returns the configured log level; ok is false when none is set.
func (c Config) level() (slog.Level, bool, error) {
	if c.LogLevel == "" {
		return 0, false, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, false, fmt.Errorf("%w: %w", connection.ErrConfiguration, err)
	}
	return l, true, nil
}
