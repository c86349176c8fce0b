// Package connection manages the lifecycle of one logical connection to a
// remote stateful service.
//
// A Manager drives a Transport: Connect opens a session, the transport
// reports what happens to the connection through a SignalFunc, and the
// manager maps every signal onto a lifecycle.State before dispatching it to
// the handler registered for that signal.
//
//	mgr, err := connection.New[*mongo.Client](mongotransport.New(cfg), connection.DefaultOptions(),
//	    connection.WithLogger(log),
//	    connection.WithEvents(map[lifecycle.Signal]eventhub.Handler{
//	        lifecycle.SignalError: func(ctx context.Context, ev eventhub.Event) error {
//	            log.Warn("connection error", logger.Error(ev.Err()))
//	            return nil
//	        },
//	    }),
//	)
//	client, err := mgr.Connect(ctx)
//	defer mgr.Disconnect(ctx)
//
// # Sessions and reconnects
//
// Each successful Connect starts a session with a fresh id. Signals emitted
// for an earlier session are dropped. Reconnects are performed by the
// transport; the manager only decides whether to honor them. Every
// reconnected signal counts as one attempt against the session's budget
// (Options.ReconnectTries). Once the budget is spent, or when
// Options.AutoReconnect is false, the reconnect is suppressed and an error
// signal carrying ErrRetriesExhausted is processed instead.
//
// # Concurrency
//
// Signals are processed one at a time: the state change is committed before
// the handler runs, and handlers run synchronously on the signal path. A
// handler must not call Connect or Disconnect synchronously. Connect and
// Disconnect reject overlapping calls with ErrOperationInProgress, except
// that Disconnect waits for a pending Connect to settle.
//
// # Errors
//
// Returned errors wrap ErrConfiguration, ErrTransport or
// ErrOperationInProgress and work with errors.Is.
package connection
