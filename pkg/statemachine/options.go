package statemachine

import (
	"fmt"
)

// Option configures a machine during construction.
type Option[S, E ~string] func(*Machine[S, E]) error

// WithTransitions adds multiple transitions at once. An empty From declares an
// any-state transition; transitions from a concrete state take precedence.
func WithTransitions[S, E ~string](transitions []Transition[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		for i, t := range transitions {
			if err := m.add(t); err != nil {
				return fmt.Errorf("failed to add transition[%d] %q->%q on %q: %w", i, t.From, t.To, t.Event, err)
			}
		}
		return nil
	}
}
