package eventhub

import "errors"

// ErrHandlerPanic wraps the value recovered from a panicking handler.
var ErrHandlerPanic = errors.New("eventhub: handler panicked")
