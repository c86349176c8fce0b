package backoff

import "errors"

var (
	ErrInvalidConfig         = errors.New("backoff: invalid configuration")
	ErrInvalidBaseInterval   = errors.New("backoff: base interval must be positive")
	ErrInvalidMaxInterval    = errors.New("backoff: max interval must not be negative")
	ErrInvalidMaxRetries     = errors.New("backoff: max retries must not be negative")
	ErrInvalidConnectTimeout = errors.New("backoff: connect timeout must not be negative")
	ErrUnknownStrategy       = errors.New("backoff: unknown strategy")
)
