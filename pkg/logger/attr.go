package logger

import (
	"fmt"
	"log/slog"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Signal records a lifecycle signal name under the key "signal".
func Signal[T ~string](name T) slog.Attr {
	return slog.String("signal", string(name))
}

// Status records a connection status under the key "status".
func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

// Session records the connection session id under the key "session_id".
func Session(id string) slog.Attr {
	return slog.String("session_id", id)
}

// Transport records the transport name under the key "transport".
func Transport(name string) slog.Attr {
	return slog.String("transport", name)
}

// Attempt records a reconnect attempt number under the key "attempt".
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Payload records a signal payload under the key "payload".
// Errors are logged by message; nil payloads produce an empty Attr.
func Payload(v any) slog.Attr {
	switch p := v.(type) {
	case nil:
		return slog.Attr{}
	case error:
		return slog.String("payload", p.Error())
	case fmt.Stringer:
		return slog.String("payload", p.String())
	default:
		return slog.Any("payload", p)
	}
}
