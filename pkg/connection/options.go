package connection

import (
	"errors"
	"time"

	"github.com/dmitrymomot/connkit/pkg/backoff"
)

// Options is the configuration surface shared by the manager and transports.
// YAML keys mirror the driver option names; env tags are meant to be parsed
// with a prefix such as "CONN_".
type Options struct {
	ConnectTimeoutMS       int              `yaml:"connectTimeoutMS" env:"CONNECT_TIMEOUT_MS" envDefault:"30000"`
	PoolSize               int              `yaml:"poolSize" env:"POOL_SIZE" envDefault:"5"`
	ReconnectIntervalMS    int              `yaml:"reconnectInterval" env:"RECONNECT_INTERVAL_MS" envDefault:"1000"`
	ReconnectTries         int              `yaml:"reconnectTries" env:"RECONNECT_TRIES" envDefault:"30"` // backoff.Unlimited for no limit
	ReadPreference         ReadPreference   `yaml:"readPreference" env:"READ_PREFERENCE" envDefault:"primary"`
	KeepAliveMS            int              `yaml:"keepAlive" env:"KEEP_ALIVE_MS" envDefault:"10000"`
	AutoReconnect          bool             `yaml:"autoReconnect" env:"AUTO_RECONNECT" envDefault:"true"`
	ReconnectStrategy      backoff.Strategy `yaml:"reconnectStrategy" env:"RECONNECT_STRATEGY" envDefault:"constant"`
	MaxReconnectIntervalMS int              `yaml:"maxReconnectInterval" env:"MAX_RECONNECT_INTERVAL_MS"`
}

// DefaultOptions returns the same values the env defaults produce.
func DefaultOptions() Options {
	return Options{
		ConnectTimeoutMS:    30000,
		PoolSize:            5,
		ReconnectIntervalMS: 1000,
		ReconnectTries:      30,
		ReadPreference:      ReadPrimary,
		KeepAliveMS:         10000,
		AutoReconnect:       true,
		ReconnectStrategy:   backoff.StrategyConstant,
	}
}

// ConnectTimeout returns ConnectTimeoutMS as a duration.
func (o Options) ConnectTimeout() time.Duration {
	return time.Duration(o.ConnectTimeoutMS) * time.Millisecond
}

// ReconnectInterval returns the base delay between reconnect attempts.
func (o Options) ReconnectInterval() time.Duration {
	return time.Duration(o.ReconnectIntervalMS) * time.Millisecond
}

// MaxReconnectInterval returns the exponential backoff cap; zero selects backoff.DefaultMaxInterval.
func (o Options) MaxReconnectInterval() time.Duration {
	return time.Duration(o.MaxReconnectIntervalMS) * time.Millisecond
}

// KeepAlive returns the health-check interval; zero disables it.
func (o Options) KeepAlive() time.Duration {
	return time.Duration(o.KeepAliveMS) * time.Millisecond
}

// BackoffConfig translates the reconnect options into a backoff configuration.
func (o Options) BackoffConfig() backoff.Config {
	return backoff.Config{
		BaseInterval:   o.ReconnectInterval(),
		MaxInterval:    o.MaxReconnectInterval(),
		MaxRetries:     o.ReconnectTries,
		ConnectTimeout: o.ConnectTimeout(),
		Strategy:       o.ReconnectStrategy,
	}
}

// Backoff builds the reconnect policy described by the options.
func (o Options) Backoff() (*backoff.Policy, error) {
	p, err := backoff.New(o.BackoffConfig())
	if err != nil {
		return nil, errors.Join(ErrConfiguration, err)
	}
	return p, nil
}

// Validate checks every field. The returned error wraps ErrConfiguration.
func (o Options) Validate() error {
	var errs []error
	if o.PoolSize < 0 {
		errs = append(errs, errors.New("pool size must not be negative"))
	}
	if o.KeepAliveMS < 0 {
		errs = append(errs, errors.New("keep alive must not be negative"))
	}
	if o.ReadPreference != "" && !o.ReadPreference.Valid() {
		if _, err := ParseReadPreference(string(o.ReadPreference)); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := backoff.New(o.BackoffConfig()); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrConfiguration}, errs...)...)
	}
	return nil
}

// normalize returns a copy with the read preference in canonical form.
// It assumes Validate passed.
func (o Options) normalize() Options {
	rp, _ := ParseReadPreference(string(o.ReadPreference))
	o.ReadPreference = rp
	return o
}
