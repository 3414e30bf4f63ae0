package queue

import (
	"context"

	"github.com/AliGym19/voiceverse-sub001/logger"
	"github.com/AliGym19/voiceverse-sub001/notify"
	"go.uber.org/zap"
)

const defaultMaxSize = 100

// Queue is the foreground-facing surface: append new mutations, read
// status. It never transitions statuses; that is the Coordinator's job.
type Queue struct {
	persistence Persistence
	notifier    notify.Notifier
	maxSize     int
	log         *logger.CtxZapLogger
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithMaxSize caps the number of stored mutations.
func WithMaxSize(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.maxSize = n
		}
	}
}

// WithNotifier attaches the notification surface for "queued" messages.
func WithNotifier(n notify.Notifier) QueueOption {
	return func(q *Queue) { q.notifier = n }
}

// New creates a queue over the given persistence.
func New(persistence Persistence, opts ...QueueOption) *Queue {
	q := &Queue{
		persistence: persistence,
		maxSize:     defaultMaxSize,
		log:         logger.GetLogger("queue"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends a pending mutation. Called when a mutating request
// could not reach the network. ErrQueueFull past the cap.
func (q *Queue) Enqueue(ctx context.Context, method, url string, payload []byte) (*Mutation, error) {
	existing, err := q.persistence.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) >= q.maxSize {
		return nil, ErrQueueFull.WithData("max_size", q.maxSize)
	}

	m := NewMutation(method, url, payload)
	if err := q.persistence.Save(ctx, m); err != nil {
		return nil, err
	}

	q.log.InfoCtx(ctx, "mutation queued",
		zap.String("id", m.ID),
		zap.String("url", url))
	if q.notifier != nil {
		_ = q.notifier.Notify(ctx, notify.Notification{
			Title: "Request queued",
			Body:  "You are offline. The request will be retried when the connection returns.",
		})
	}
	return m, nil
}

// Get returns one mutation by id.
func (q *Queue) Get(ctx context.Context, id string) (*Mutation, error) {
	return q.persistence.Get(ctx, id)
}

// List returns all mutations in FIFO order.
func (q *Queue) List(ctx context.Context) ([]*Mutation, error) {
	return q.persistence.List(ctx)
}

// Size returns the number of stored mutations.
func (q *Queue) Size(ctx context.Context) (int, error) {
	all, err := q.persistence.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// Clear removes every mutation. Used by PURGE_ALL.
func (q *Queue) Clear(ctx context.Context) error {
	return q.persistence.Clear(ctx)
}

// Close releases the persistence.
func (q *Queue) Close() error {
	return q.persistence.Close()
}
