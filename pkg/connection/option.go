package connection

import (
	"log/slog"

	"github.com/dmitrymomot/connkit/pkg/backoff"
	"github.com/dmitrymomot/connkit/pkg/eventhub"
	"github.com/dmitrymomot/connkit/pkg/lifecycle"
)

// Option configures a Manager.
type Option func(*settings)

type settings struct {
	logger   *slog.Logger
	events   map[lifecycle.Signal]eventhub.Handler
	reporter eventhub.ErrorReporter
	policy   *backoff.Policy
}

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEvents registers signal handlers at construction time.
func WithEvents(events map[lifecycle.Signal]eventhub.Handler) Option {
	return func(s *settings) {
		s.events = events
	}
}

// WithErrorReporter receives failures of signal handlers.
func WithErrorReporter(r eventhub.ErrorReporter) Option {
	return func(s *settings) {
		s.reporter = r
	}
}

// WithBackoff replaces the policy derived from Options.
func WithBackoff(p *backoff.Policy) Option {
	return func(s *settings) {
		if p != nil {
			s.policy = p
		}
	}
}
