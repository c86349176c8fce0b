// Package eventhub dispatches lifecycle signals to user callbacks.
//
// A Hub holds at most one Handler per lifecycle.Signal; registering again
// replaces the previous handler. Registrations for names outside the
// recognized signal set are ignored.
//
// Dispatch never propagates a handler failure. Returned errors and panics are
// logged and forwarded to the optional ErrorReporter, so a faulty callback
// cannot interrupt the caller's own state handling.
//
//	hub := eventhub.New(eventhub.WithErrorReporter(func(ev eventhub.Event, err error) {
//	    metrics.CallbackFailures.Inc()
//	}))
//	hub.Register(lifecycle.SignalError, func(ctx context.Context, ev eventhub.Event) error {
//	    log.Println("connection error:", ev.Err())
//	    return nil
//	})
package eventhub
