package connection

import (
	"context"

	"github.com/dmitrymomot/connkit/pkg/lifecycle"
)

// SignalFunc delivers a lifecycle signal from a transport to the manager.
// It is safe to call from any goroutine, including from inside Transport.Close.
type SignalFunc func(sig lifecycle.Signal, payload any)

// Transport performs the network I/O for one logical connection.
//
// Open establishes the connection and returns its handle; emit stays valid
// for the lifetime of that handle and is how the transport reports
// error, disconnected, reconnected and close signals. The manager itself
// records connecting and open around Open, so transports should not emit them.
//
// Close tears the handle down and must emit lifecycle.SignalClose once the
// handle is released, either before returning or asynchronously afterwards.
type Transport[H any] interface {
	Open(ctx context.Context, opts Options, emit SignalFunc) (H, error)
	Close(ctx context.Context, handle H) error
}
