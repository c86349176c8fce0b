// Package statemachine provides a small, concurrency-safe finite state machine
// over string-like states and events.
//
// Transitions are declared either from a concrete source state or from any
// state. Every successful Fire increments a per-event counter, which makes the
// machine suitable for lifecycle tracking where callers need to know both the
// current state and how often each event occurred.
//
// # Usage
//
//	type Phase string
//	type Trigger string
//
//	machine := statemachine.MustNew(Phase("idle"),
//	    statemachine.WithTransitions([]statemachine.Transition[Phase, Trigger]{
//	        {From: "idle", To: "running", Event: "start"},
//	        {To: "stopped", Event: "stop"},
//	    }),
//	)
//
//	tr, err := machine.Fire("start")
//	var noTransition *statemachine.ErrNoTransitionAvailable
//	if errors.As(err, &noTransition) {
//	    // event not allowed in the current state
//	}
//	_ = tr.To // "running"
//
// # Concurrency
//
// Machine guards all access with a RWMutex. Reads (Current, Fired) share the
// lock; Fire is serialized.
package statemachine
