package lifecycle

// Signal is a named lifecycle notification emitted by a transport.
type Signal string

const (
	SignalDisconnected Signal = "disconnected"
	SignalConnecting   Signal = "connecting"
	SignalOpen         Signal = "open"
	SignalError        Signal = "error"
	SignalReconnected  Signal = "reconnected"
	SignalClose        Signal = "close"
)

var signals = []Signal{
	SignalDisconnected,
	SignalConnecting,
	SignalOpen,
	SignalError,
	SignalReconnected,
	SignalClose,
}

// Signals returns every recognized signal.
func Signals() []Signal {
	out := make([]Signal, len(signals))
	copy(out, signals)
	return out
}

// Valid reports whether s is a recognized signal.
func (s Signal) Valid() bool {
	switch s {
	case SignalDisconnected, SignalConnecting, SignalOpen, SignalError, SignalReconnected, SignalClose:
		return true
	}
	return false
}

func (s Signal) String() string {
	return string(s)
}

// Status is the logical connection status.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	// StatusReconnecting is not produced by the built-in transition table.
	StatusReconnecting Status = "reconnecting"
	StatusClosed       Status = "closed"
)

func (s Status) String() string {
	return string(s)
}
