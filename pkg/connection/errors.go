package connection

import "errors"

var (
	// ErrConfiguration is returned for invalid construction arguments.
	ErrConfiguration = errors.New("connection: invalid configuration")

	// ErrTransport wraps a failure of Transport.Open or Transport.Close.
	ErrTransport = errors.New("connection: transport failure")

	// ErrOperationInProgress is returned when Connect or Disconnect is called
	// while a conflicting operation is still pending.
	ErrOperationInProgress = errors.New("connection: operation in progress")

	// ErrRetriesExhausted is delivered as the payload of an error signal when
	// a reconnect exceeds the session's retry budget.
	ErrRetriesExhausted = errors.New("connection: reconnect retries exhausted")

	errNilTransport = errors.New("transport is required")
)
