package lifecycle

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/connkit/pkg/statemachine"
)

// State tracks the current status and per-signal counters of one connection.
// It is safe for concurrent use.
type State struct {
	machine *statemachine.Machine[Status, Signal]
}

// NewState returns a State in StatusDisconnected with all counters at zero.
func NewState() *State {
	return &State{
		machine: statemachine.MustNew(StatusDisconnected,
			statemachine.WithTransitions([]statemachine.Transition[Status, Signal]{
				{To: StatusConnecting, Event: SignalConnecting},
				{To: StatusConnected, Event: SignalOpen},
				{To: StatusConnected, Event: SignalReconnected},
				{To: StatusDisconnected, Event: SignalDisconnected},
				{To: StatusDisconnected, Event: SignalError},
				{To: StatusClosed, Event: SignalClose},
			}),
		),
	}
}

// Apply records sig and moves to the status the transition table assigns to it.
// The counter update and the status write are committed together.
func (s *State) Apply(sig Signal) (Status, error) {
	if !sig.Valid() {
		return s.machine.Current(), fmt.Errorf("%w: %q", ErrUnknownSignal, sig)
	}

	tr, err := s.machine.Fire(sig)
	if err != nil {
		return s.machine.Current(), errors.Join(ErrUnknownSignal, err)
	}
	return tr.To, nil
}

// Status returns the last committed status.
func (s *State) Status() Status {
	return s.machine.Current()
}

// IsConnected reports whether the status is StatusConnected.
func (s *State) IsConnected() bool {
	return s.machine.Current() == StatusConnected
}

// Count returns how many times sig has been applied.
func (s *State) Count(sig Signal) uint64 {
	return s.machine.Fired(sig)
}

// Counts returns a snapshot with an entry for every recognized signal.
func (s *State) Counts() map[Signal]uint64 {
	fired := s.machine.FiredAll()
	out := make(map[Signal]uint64, len(signals))
	for _, sig := range signals {
		out[sig] = fired[sig]
	}
	return out
}
