package relay

import (
	"context"
	"errors"
)

// ErrStopPropagation stops further listeners without failing the
// dispatch.
var ErrStopPropagation = errors.New("stop propagation")

// Listener handles dispatched events. Returning an error from a
// synchronous listener stops the remaining listeners.
type Listener interface {
	Handle(ctx context.Context, event Event) error
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ctx context.Context, event Event) error

// Handle implements Listener.
func (f ListenerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}
