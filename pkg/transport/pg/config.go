package pg

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/connkit/pkg/connection"
)

type Config struct {
	ConnectionString  string        `env:"PG_CONN_URL" yaml:"url"`                                           // ConnectionString is the connection string to the database.
	MinConns          int32         `env:"PG_MIN_CONNS" envDefault:"1" yaml:"minConns"`                      // MinConns is the number of connections kept open.
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m" yaml:"healthCheckPeriod"`   // HealthCheckPeriod is the period between pool health checks.
	MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m" yaml:"maxConnIdleTime"`    // MaxConnIdleTime is the maximum amount of time a connection may be idle to be reused.
	MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m" yaml:"maxConnLifetime"`     // MaxConnLifetime is the maximum amount of time a connection may be reused.
	MigrationsPath    string        `env:"PG_MIGRATIONS_PATH" yaml:"migrationsPath"`                         // MigrationsPath enables goose migrations on open when set.
	MigrationsTable   string        `env:"PG_MIGRATIONS_TABLE" envDefault:"schema_migrations" yaml:"migrationsTable"` // MigrationsTable is the name of the table used to store the migration version.
}

// PoolConfig parses cfg.ConnectionString and applies cfg and opts on top.
func PoolConfig(cfg Config, opts connection.Options) (*pgxpool.Config, error) {
	if cfg.ConnectionString == "" {
		return nil, ErrEmptyConnectionString
	}

	pc, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}

	if opts.PoolSize > 0 {
		pc.MaxConns = int32(opts.PoolSize)
	}
	if cfg.MinConns > 0 {
		pc.MinConns = min(cfg.MinConns, pc.MaxConns)
	}
	if cfg.HealthCheckPeriod > 0 {
		pc.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if d := opts.ConnectTimeout(); d > 0 {
		pc.ConnConfig.ConnectTimeout = d
	}
	return pc, nil
}
