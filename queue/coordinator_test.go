package queue

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/AliGym19/voiceverse-sub001/fetch"
	"github.com/AliGym19/voiceverse-sub001/notify"
	"github.com/AliGym19/voiceverse-sub001/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetcher replays canned outcomes per call, in order.
type scriptedFetcher struct {
	mu       sync.Mutex
	outcomes []fetchOutcome
	calls    []string
}

type fetchOutcome struct {
	resp *fetch.Response
	err  error
}

func jsonResponse(status int, body string) *fetch.Response {
	return &fetch.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(body),
	}
}

func (f *scriptedFetcher) Do(ctx context.Context, method, url string, body []byte, header http.Header) (*fetch.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method+" "+url)
	if len(f.outcomes) == 0 {
		return jsonResponse(http.StatusOK, `{}`), nil
	}
	next := f.outcomes[0]
	f.outcomes = f.outcomes[1:]
	return next.resp, next.err
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestCoordinator_DrainReplaysAndNotifies(t *testing.T) {
	ctx := context.Background()
	q := New(NewMemoryPersistence())
	collector := notify.NewCollectNotifier()
	fetcher := &scriptedFetcher{outcomes: []fetchOutcome{
		{resp: jsonResponse(http.StatusOK, `{"filename":"hello_world.mp3"}`)},
	}}
	c := NewCoordinator(q, fetcher, relay.NewDispatcher(), collector)

	m, err := q.Enqueue(ctx, "POST", "/api/speech", speechPayload("Hello world", "nova", 1.0))
	require.NoError(t, err)

	result, err := c.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)
	assert.Zero(t, result.Failed)
	assert.Zero(t, result.Remaining)

	// Completed entries are removed, not kept.
	_, err = q.Get(ctx, m.ID)
	require.Error(t, err)
	assert.True(t, ErrNotFound.Is(err))

	sent := collector.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "hello_world.mp3")
}

func TestCoordinator_TransportFailureRevertsAndStops(t *testing.T) {
	ctx := context.Background()
	q := New(NewMemoryPersistence())
	fetcher := &scriptedFetcher{outcomes: []fetchOutcome{
		{err: fetch.ErrTransport},
	}}
	c := NewCoordinator(q, fetcher, relay.NewDispatcher(), nil)

	first, err := q.Enqueue(ctx, "POST", "/api/speech", speechPayload("one", "nova", 1.0))
	require.NoError(t, err)
	second, err := q.Enqueue(ctx, "POST", "/api/speech", speechPayload("two", "nova", 1.0))
	require.NoError(t, err)

	result, err := c.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Replayed)
	assert.Equal(t, 2, result.Remaining, "both entries stay pending")
	assert.Equal(t, 1, fetcher.callCount(), "pass stops at the first transport failure")

	got, err := q.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, 1, got.Attempts)

	got, err = q.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Zero(t, got.Attempts, "untouched entries keep their attempt count")
}

func TestCoordinator_ApplicationErrorParksAsFailed(t *testing.T) {
	ctx := context.Background()
	q := New(NewMemoryPersistence())
	fetcher := &scriptedFetcher{outcomes: []fetchOutcome{
		{resp: jsonResponse(http.StatusUnprocessableEntity, `{"error":"unknown voice"}`)},
		{resp: jsonResponse(http.StatusOK, `{"filename":"two.mp3"}`)},
	}}
	c := NewCoordinator(q, fetcher, relay.NewDispatcher(), nil)

	failed, err := q.Enqueue(ctx, "POST", "/api/speech", speechPayload("one", "bogus", 1.0))
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, "POST", "/api/speech", speechPayload("two", "nova", 1.0))
	require.NoError(t, err)

	result, err := c.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed, "pass continues past an application error")
	assert.Equal(t, 1, result.Failed)

	got, err := q.Get(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status, "rejected entries are kept for inspection")
}

func TestCoordinator_MaxAttemptsParksEntry(t *testing.T) {
	ctx := context.Background()
	q := New(NewMemoryPersistence())
	fetcher := &scriptedFetcher{outcomes: []fetchOutcome{
		{err: fetch.ErrTransport},
		{err: fetch.ErrTransport},
	}}
	c := NewCoordinator(q, fetcher, relay.NewDispatcher(), nil, WithMaxAttempts(2))

	m, err := q.Enqueue(ctx, "POST", "/api/speech", speechPayload("x", "nova", 1.0))
	require.NoError(t, err)

	_, err = c.Drain(ctx)
	require.NoError(t, err)
	got, err := q.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)

	_, err = c.Drain(ctx)
	require.NoError(t, err)
	got, err = q.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status, "entry parks after exhausting drain passes")
	assert.Equal(t, 2, got.Attempts)
}

func TestCoordinator_RetryFailed(t *testing.T) {
	ctx := context.Background()
	q := New(NewMemoryPersistence())
	fetcher := &scriptedFetcher{outcomes: []fetchOutcome{
		{resp: jsonResponse(http.StatusBadRequest, `{}`)},
		{resp: jsonResponse(http.StatusOK, `{"filename":"x.mp3"}`)},
	}}
	c := NewCoordinator(q, fetcher, relay.NewDispatcher(), nil)

	m, err := q.Enqueue(ctx, "POST", "/api/speech", speechPayload("x", "nova", 1.0))
	require.NoError(t, err)

	_, err = c.Drain(ctx)
	require.NoError(t, err)

	got, err := q.Get(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, got.Status)

	require.NoError(t, c.RetryFailed(ctx, m.ID))
	got, err = q.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Zero(t, got.Attempts)

	result, err := c.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)
}

func TestCoordinator_RetryFailedRejectsPending(t *testing.T) {
	ctx := context.Background()
	q := New(NewMemoryPersistence())
	c := NewCoordinator(q, &scriptedFetcher{}, relay.NewDispatcher(), nil)

	m, err := q.Enqueue(ctx, "POST", "/api/speech", speechPayload("x", "nova", 1.0))
	require.NoError(t, err)

	err = c.RetryFailed(ctx, m.ID)
	require.Error(t, err)
	assert.True(t, ErrNotFailed.Is(err))
}

func TestCoordinator_DrainsOnReconnectSignal(t *testing.T) {
	ctx := context.Background()
	q := New(NewMemoryPersistence())
	fetcher := &scriptedFetcher{outcomes: []fetchOutcome{
		{resp: jsonResponse(http.StatusOK, `{"filename":"hello_world.mp3"}`)},
	}}
	dispatcher := relay.NewDispatcher()
	defer dispatcher.Close()
	c := NewCoordinator(q, fetcher, dispatcher, nil)

	unsubscribe := c.Start()
	defer unsubscribe()

	_, err := q.Enqueue(ctx, "POST", "/api/speech", speechPayload("Hello world", "nova", 1.0))
	require.NoError(t, err)

	require.NoError(t, dispatcher.Dispatch(ctx, relay.NewConnectivityEvent(true)))

	assert.Eventually(t, func() bool {
		size, err := q.Size(ctx)
		return err == nil && size == 0
	}, time.Second, 10*time.Millisecond, "queue drains after the online event")
}
