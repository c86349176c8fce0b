package statemachine

import (
	"fmt"
	"maps"
	"sync"
)

// Transition describes a state change triggered by an event.
// An empty From matches any current state.
type Transition[S, E ~string] struct {
	From  S
	To    S
	Event E
}

// Machine is a thread-safe in-memory state machine.
// Lookups go through [from][event] first and fall back to any-state transitions.
type Machine[S, E ~string] struct {
	current     S
	transitions map[S]map[E]S
	anyState    map[E]S
	fired       map[E]uint64
	mu          sync.RWMutex
}

// New creates a machine in the given initial state.
func New[S, E ~string](initial S, opts ...Option[S, E]) (*Machine[S, E], error) {
	if initial == "" {
		return nil, ErrInvalidInitialState
	}

	m := &Machine[S, E]{
		current:     initial,
		transitions: make(map[S]map[E]S),
		anyState:    make(map[E]S),
		fired:       make(map[E]uint64),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// MustNew works like New but panics if any option fails to apply.
func MustNew[S, E ~string](initial S, opts ...Option[S, E]) *Machine[S, E] {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

func (m *Machine[S, E]) add(t Transition[S, E]) error {
	if t.To == "" || t.Event == "" {
		return ErrInvalidTransition
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if t.From == "" {
		m.anyState[t.Event] = t.To
		return nil
	}
	if _, ok := m.transitions[t.From]; !ok {
		m.transitions[t.From] = make(map[E]S)
	}
	m.transitions[t.From][t.Event] = t.To
	return nil
}

// Current returns the current state.
func (m *Machine[S, E]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Fire applies event to the machine. On success the event counter is
// incremented and the committed transition is returned.
func (m *Machine[S, E]) Fire(event E) (Transition[S, E], error) {
	if event == "" {
		return Transition[S, E]{}, ErrInvalidEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	to, ok := m.lookup(event)
	if !ok {
		return Transition[S, E]{}, NewErrNoTransitionAvailable(string(m.current), string(event))
	}

	t := Transition[S, E]{From: m.current, To: to, Event: event}
	m.current = to
	m.fired[event]++
	return t, nil
}

// Fired returns how many times event has been fired successfully.
func (m *Machine[S, E]) Fired(event E) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fired[event]
}

// FiredAll returns a snapshot of all event counters.
func (m *Machine[S, E]) FiredAll() map[E]uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.fired)
}

// lookup must be called with the lock held.
func (m *Machine[S, E]) lookup(event E) (S, bool) {
	if byEvent, ok := m.transitions[m.current]; ok {
		if to, ok := byEvent[event]; ok {
			return to, true
		}
	}
	to, ok := m.anyState[event]
	return to, ok
}
