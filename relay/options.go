package relay

type listenerEntry struct {
	id       uint64
	listener Listener
	priority int
	async    bool
	once     bool
}

// SubscribeOption configures one subscription.
type SubscribeOption func(*listenerEntry)

// WithPriority orders listeners; lower runs first. Default 0.
func WithPriority(priority int) SubscribeOption {
	return func(e *listenerEntry) { e.priority = priority }
}

// WithAsync runs the listener on the pool even for synchronous dispatch.
// Its errors never affect event propagation.
func WithAsync() SubscribeOption {
	return func(e *listenerEntry) { e.async = true }
}

// WithOnce unsubscribes the listener after its first execution.
func WithOnce() SubscribeOption {
	return func(e *listenerEntry) { e.once = true }
}

// DispatcherOption configures the dispatcher.
type DispatcherOption func(*Dispatcher)

// WithPoolSize sets the async worker pool size.
func WithPoolSize(size int) DispatcherOption {
	return func(d *Dispatcher) {
		if size > 0 {
			d.poolSize = size
		}
	}
}
