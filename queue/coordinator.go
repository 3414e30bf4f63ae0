package queue

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/AliGym19/voiceverse-sub001/fetch"
	"github.com/AliGym19/voiceverse-sub001/logger"
	"github.com/AliGym19/voiceverse-sub001/notify"
	"github.com/AliGym19/voiceverse-sub001/relay"
	"go.uber.org/zap"
)

const defaultMaxAttempts = 5

// Fetcher re-issues queued requests. Satisfied by *fetch.Client.
type Fetcher interface {
	Do(ctx context.Context, method, url string, body []byte, header http.Header) (*fetch.Response, error)
}

// generationResult is the origin's response body for a completed TTS
// generation; the filename names the produced audio asset.
type generationResult struct {
	Filename string `json:"filename"`
}

// DrainResult summarizes one drain pass.
type DrainResult struct {
	Replayed  int `json:"replayed"`
	Failed    int `json:"failed"`
	Remaining int `json:"remaining"`
}

// Coordinator owns queue status transitions and performs replay. It is
// the queue's single writer.
type Coordinator struct {
	queue       *Queue
	fetcher     Fetcher
	dispatcher  *relay.Dispatcher
	notifier    notify.Notifier
	maxAttempts int
	log         *logger.CtxZapLogger

	// drainMu serializes drain passes; one pass per reconnect signal.
	drainMu sync.Mutex
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithMaxAttempts sets how many drain passes may touch an entry before
// it is parked as failed.
func WithMaxAttempts(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// NewCoordinator creates a replay coordinator.
func NewCoordinator(q *Queue, fetcher Fetcher, dispatcher *relay.Dispatcher, notifier notify.Notifier, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		queue:       q,
		fetcher:     fetcher,
		dispatcher:  dispatcher,
		notifier:    notifier,
		maxAttempts: defaultMaxAttempts,
		log:         logger.GetLogger("queue"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes the coordinator to reconnect signals. Returns the
// unsubscribe function.
func (c *Coordinator) Start() relay.UnsubscribeFunc {
	return c.dispatcher.Subscribe(relay.EventOnline, relay.ListenerFunc(
		func(ctx context.Context, _ relay.Event) error {
			if _, err := c.Drain(ctx); err != nil {
				c.log.WarnCtx(ctx, "drain after reconnect failed", zap.Error(err))
			}
			return nil
		}))
}

// Drain performs one FIFO pass over pending mutations. Per entry: mark
// in-flight, re-issue, then either remove on success, park as failed on
// an application error, or revert to pending and stop the pass on a
// transport failure. Exactly one pass runs at a time.
func (c *Coordinator) Drain(ctx context.Context) (*DrainResult, error) {
	if !c.drainMu.TryLock() {
		return nil, ErrDrainRunning
	}
	defer c.drainMu.Unlock()

	all, err := c.queue.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &DrainResult{}
	for _, m := range all {
		if m.Status != StatusPending {
			continue
		}

		if err := c.transition(ctx, m, StatusInFlight, m.Attempts+1); err != nil {
			return result, err
		}

		resp, fetchErr := c.fetcher.Do(ctx, m.Method, m.URL, m.Payload, jsonHeader())
		switch {
		case fetchErr != nil && fetch.IsTransportError(fetchErr):
			// The network is gone again. Revert and wait for the next
			// reconnect signal; no busy-retry within this pass.
			if m.Attempts >= c.maxAttempts {
				_ = c.transition(ctx, m, StatusFailed, m.Attempts)
				result.Failed++
				c.notifyFailed(ctx, m)
			} else {
				_ = c.transition(ctx, m, StatusPending, m.Attempts)
			}
			remaining, _ := c.countPending(ctx)
			result.Remaining = remaining
			c.log.InfoCtx(ctx, "drain stopped on transport failure",
				zap.String("id", m.ID),
				zap.Int("attempts", m.Attempts))
			return result, nil

		case fetchErr != nil:
			// Not a transport condition: park the entry for inspection.
			_ = c.transition(ctx, m, StatusFailed, m.Attempts)
			result.Failed++
			c.notifyFailed(ctx, m)

		case resp.IsSuccess():
			if err := c.queue.persistence.Delete(ctx, m.ID); err != nil {
				return result, err
			}
			result.Replayed++
			c.notifyCompleted(ctx, m, resp)

		default:
			// Reachable server rejected the request. Never re-queued.
			_ = c.transition(ctx, m, StatusFailed, m.Attempts)
			result.Failed++
			c.log.WarnCtx(ctx, "replay rejected by server",
				zap.String("id", m.ID),
				zap.Int("status", resp.StatusCode))
			c.notifyFailed(ctx, m)
		}
	}

	remaining, _ := c.countPending(ctx)
	result.Remaining = remaining
	return result, nil
}

// RetryFailed re-queues one failed mutation for the next drain pass.
// Operator/manual-retry surface.
func (c *Coordinator) RetryFailed(ctx context.Context, id string) error {
	m, err := c.queue.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.Status != StatusFailed {
		return ErrNotFailed.WithData("status", string(m.Status))
	}
	return c.transition(ctx, m, StatusPending, 0)
}

func (c *Coordinator) transition(ctx context.Context, m *Mutation, status Status, attempts int) error {
	m.Status = status
	m.Attempts = attempts
	m.UpdatedAt = nowFunc()
	return c.queue.persistence.Save(ctx, m)
}

func (c *Coordinator) countPending(ctx context.Context) (int, error) {
	all, err := c.queue.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range all {
		if m.Status == StatusPending {
			n++
		}
	}
	return n, nil
}

func (c *Coordinator) notifyCompleted(ctx context.Context, m *Mutation, resp *fetch.Response) {
	var gen generationResult
	_ = resp.JSON(&gen)

	body := "Your queued request has completed."
	if gen.Filename != "" {
		body = fmt.Sprintf("%s is ready to play.", gen.Filename)
	} else if speech, ok := m.Speech(); ok && speech.Text != "" {
		body = fmt.Sprintf("Speech for %q is ready.", truncate(speech.Text, 40))
	}

	if c.notifier != nil {
		_ = c.notifier.Notify(ctx, notify.Notification{
			Title:  "Generation complete",
			Body:   body,
			Target: gen.Filename,
		})
	}
	if c.dispatcher != nil {
		c.dispatcher.DispatchAsync(ctx, relay.NewReplayDoneEvent(m.ID, gen.Filename))
	}
	c.log.InfoCtx(ctx, "replay completed",
		zap.String("id", m.ID),
		zap.String("filename", gen.Filename))
}

func (c *Coordinator) notifyFailed(ctx context.Context, m *Mutation) {
	if c.notifier == nil {
		return
	}
	_ = c.notifier.Notify(ctx, notify.Notification{
		Title: "Request failed",
		Body:  "A queued request could not be completed. It is kept for manual retry.",
	})
}

func jsonHeader() http.Header {
	return http.Header{"Content-Type": []string{"application/json"}}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
