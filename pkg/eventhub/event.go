package eventhub

import (
	"context"
	"time"

	"github.com/dmitrymomot/connkit/pkg/lifecycle"
)

// Event is what a Handler receives.
type Event struct {
	Signal  lifecycle.Signal
	Payload any
	Session string
	Status  lifecycle.Status // status after the signal was applied
	At      time.Time
}

// Err returns the payload if it is an error.
func (e Event) Err() error {
	err, _ := e.Payload.(error)
	return err
}

// Handler reacts to a signal. A returned error is reported, not propagated.
type Handler func(ctx context.Context, ev Event) error

// ErrorReporter receives handler failures.
type ErrorReporter func(ev Event, err error)

// Func adapts a callback that cannot fail.
func Func(fn func(ev Event)) Handler {
	if fn == nil {
		return nil
	}
	return func(_ context.Context, ev Event) error {
		fn(ev)
		return nil
	}
}
