package relay

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/AliGym19/voiceverse-sub001/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// UnsubscribeFunc removes a subscription.
type UnsubscribeFunc func()

// Dispatcher fans events out to subscribed listeners, synchronously or
// on a shared worker pool.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]listenerEntry
	nextID    uint64
	pool      *ants.Pool
	poolSize  int
	log       *logger.CtxZapLogger
	closed    int32
}

// NewDispatcher creates a dispatcher with its worker pool.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		listeners: make(map[string][]listenerEntry),
		poolSize:  32,
		log:       logger.GetLogger("relay"),
	}
	for _, opt := range opts {
		opt(d)
	}

	var err error
	d.pool, err = ants.NewPool(d.poolSize)
	if err != nil {
		d.log.Error("worker pool creation failed, using default size", zap.Error(err))
		d.pool, _ = ants.NewPool(32)
	}
	return d
}

// Subscribe registers a listener for an event name and returns the
// unsubscribe function.
func (d *Dispatcher) Subscribe(eventName string, listener Listener, opts ...SubscribeOption) UnsubscribeFunc {
	if eventName == "" || listener == nil {
		return func() {}
	}

	entry := listenerEntry{
		id:       atomic.AddUint64(&d.nextID, 1),
		listener: listener,
	}
	for _, opt := range opts {
		opt(&entry)
	}

	d.mu.Lock()
	d.listeners[eventName] = append(d.listeners[eventName], entry)
	sort.SliceStable(d.listeners[eventName], func(i, j int) bool {
		return d.listeners[eventName][i].priority < d.listeners[eventName][j].priority
	})
	d.mu.Unlock()

	return func() { d.unsubscribe(eventName, entry.id) }
}

func (d *Dispatcher) unsubscribe(eventName string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := d.listeners[eventName]
	for i, e := range entries {
		if e.id == id {
			d.listeners[eventName] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Dispatch delivers the event to all listeners in priority order.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	if event == nil {
		return nil
	}

	d.mu.RLock()
	entries := make([]listenerEntry, len(d.listeners[event.Name()]))
	copy(entries, d.listeners[event.Name()])
	d.mu.RUnlock()

	err := d.executeListeners(ctx, event, entries)
	d.cleanupOnceListeners(event.Name(), entries)

	if errors.Is(err, ErrStopPropagation) {
		return nil
	}
	return err
}

// DispatchAsync delivers the event on the worker pool.
func (d *Dispatcher) DispatchAsync(ctx context.Context, event Event) {
	if atomic.LoadInt32(&d.closed) == 1 || event == nil {
		return
	}
	eventName := event.Name()
	err := d.pool.Submit(func() {
		if err := d.Dispatch(context.Background(), event); err != nil {
			d.log.Error("async dispatch failed",
				zap.String("event", eventName),
				zap.Error(err))
		}
	})
	if err != nil {
		d.log.ErrorCtx(ctx, "async dispatch submit failed",
			zap.String("event", eventName),
			zap.Error(err))
	}
}

func (d *Dispatcher) executeListeners(ctx context.Context, event Event, entries []listenerEntry) error {
	for _, entry := range entries {
		if entry.async {
			listener := entry.listener
			eventName := event.Name()
			_ = d.pool.Submit(func() {
				if err := listener.Handle(ctx, event); err != nil && !errors.Is(err, ErrStopPropagation) {
					d.log.Error("async listener failed",
						zap.String("event", eventName),
						zap.Error(err))
				}
			})
			continue
		}
		if err := entry.listener.Handle(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) cleanupOnceListeners(eventName string, executed []listenerEntry) {
	var onceIDs []uint64
	for _, e := range executed {
		if e.once {
			onceIDs = append(onceIDs, e.id)
		}
	}
	if len(onceIDs) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	entries := d.listeners[eventName]
	filtered := entries[:0]
	for _, e := range entries {
		remove := false
		for _, id := range onceIDs {
			if e.id == id {
				remove = true
				break
			}
		}
		if !remove {
			filtered = append(filtered, e)
		}
	}
	d.listeners[eventName] = filtered
}

// ListenerCount returns how many listeners an event has. Test helper.
func (d *Dispatcher) ListenerCount(eventName string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[eventName])
}

// Close stops async delivery and releases the pool.
func (d *Dispatcher) Close() {
	atomic.StoreInt32(&d.closed, 1)
	if d.pool != nil {
		d.pool.Release()
	}
}
