// Package lifecycle models the logical state of a single remote connection.
//
// Transports report what happens to the connection as signals (connecting,
// open, error, close, disconnected, reconnected). State applies each signal to
// a fixed transition table and keeps a counter per signal for the lifetime of
// the instance:
//
//	connecting   -> connecting
//	open         -> connected
//	reconnected  -> connected
//	disconnected -> disconnected
//	error        -> disconnected
//	close        -> closed
//
// Every transition applies from any status, so State never rejects a known
// signal. Unknown signals fail with ErrUnknownSignal and leave the state
// untouched.
package lifecycle
