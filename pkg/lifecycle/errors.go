package lifecycle

import "errors"

var ErrUnknownSignal = errors.New("lifecycle: unknown signal")
