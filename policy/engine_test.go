package policy

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/AliGym19/voiceverse-sub001/cachestore"
	"github.com/AliGym19/voiceverse-sub001/classify"
	"github.com/AliGym19/voiceverse-sub001/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher scripts origin behavior per test.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	handler func(method, url string) (*fetch.Response, error)
}

func (f *fakeFetcher) Do(ctx context.Context, method, url string, body []byte, header http.Header) (*fetch.Response, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.handler(method, url)
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func okResponse(body string) (*fetch.Response, error) {
	return &fetch.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       []byte(body),
	}, nil
}

func transportError() (*fetch.Response, error) {
	return nil, fetch.ErrTransport.Wrap(errors.New("connection refused"))
}

func newTestEngine(f Fetcher, opts ...Option) (*Engine, *cachestore.Manager) {
	stores := cachestore.NewManager(cachestore.NewMemoryBackend(), nil)
	return NewEngine(f, stores, "v1", opts...), stores
}

func TestStoreFirst_ServesStoredWithoutNetwork(t *testing.T) {
	f := &fakeFetcher{handler: func(method, url string) (*fetch.Response, error) {
		t.Fatal("network must not be touched when the store has the entry")
		return nil, nil
	}}
	engine, stores := newTestEngine(f)
	ctx := context.Background()

	key := cachestore.EntryKey(http.MethodGet, "/static/app.js")
	require.NoError(t, stores.Put(ctx, "static-v1", key, &cachestore.Entry{
		Method: http.MethodGet, URL: "/static/app.js",
		StatusCode: http.StatusOK, Body: []byte("cached"),
	}))

	entry, err := engine.Serve(ctx, http.MethodGet, "/static/app.js", classify.ClassStaticAsset)
	require.NoError(t, err)
	assert.Equal(t, "cached", string(entry.Body))
	assert.Equal(t, 0, f.callCount())
}

func TestStoreFirst_FetchesAndStoresOnMiss(t *testing.T) {
	f := &fakeFetcher{handler: func(method, url string) (*fetch.Response, error) {
		return okResponse("fresh")
	}}
	engine, stores := newTestEngine(f)
	ctx := context.Background()

	entry, err := engine.Serve(ctx, http.MethodGet, "/static/app.js", classify.ClassStaticAsset)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(entry.Body))

	stored, err := stores.Get(ctx, "static-v1", cachestore.EntryKey(http.MethodGet, "/static/app.js"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(stored.Body))
}

func TestStoreFirst_OfflineWithEmptyStoreYieldsSynthetic503(t *testing.T) {
	f := &fakeFetcher{handler: func(method, url string) (*fetch.Response, error) {
		return transportError()
	}}
	engine, _ := newTestEngine(f)

	entry, err := engine.Serve(context.Background(), http.MethodGet, "/static/app.js", classify.ClassStaticAsset)
	require.NoError(t, err, "policy must never surface a transport error")
	assert.Equal(t, http.StatusServiceUnavailable, entry.StatusCode)
	assert.True(t, IsOfflineEntry(entry))
}

func TestNetworkFirst_StoresAndReturnsNetworkResponse(t *testing.T) {
	f := &fakeFetcher{handler: func(method, url string) (*fetch.Response, error) {
		return okResponse(`{"voices":["nova"]}`)
	}}
	engine, stores := newTestEngine(f)
	ctx := context.Background()

	entry, err := engine.Serve(ctx, http.MethodGet, "/api/voices", classify.ClassAPICall)
	require.NoError(t, err)
	assert.Equal(t, `{"voices":["nova"]}`, string(entry.Body))

	stored, err := stores.Get(ctx, "dynamic-v1", cachestore.EntryKey(http.MethodGet, "/api/voices"))
	require.NoError(t, err)
	assert.Equal(t, entry.Body, stored.Body)
}

func TestNetworkFirst_FallsBackToStoreOnTransportFailure(t *testing.T) {
	f := &fakeFetcher{handler: func(method, url string) (*fetch.Response, error) {
		return transportError()
	}}
	engine, stores := newTestEngine(f)
	ctx := context.Background()

	key := cachestore.EntryKey(http.MethodGet, "/api/voices")
	require.NoError(t, stores.Put(ctx, "dynamic-v1", key, &cachestore.Entry{
		Method: http.MethodGet, URL: "/api/voices",
		StatusCode: http.StatusOK, Body: []byte("stale-but-usable"),
	}))

	entry, err := engine.Serve(ctx, http.MethodGet, "/api/voices", classify.ClassAPICall)
	require.NoError(t, err)
	assert.Equal(t, "stale-but-usable", string(entry.Body))
}

func TestNetworkFirst_OfflineNoStoreYieldsStructuredPayload(t *testing.T) {
	f := &fakeFetcher{handler: func(method, url string) (*fetch.Response, error) {
		return transportError()
	}}
	engine, _ := newTestEngine(f)

	entry, err := engine.Serve(context.Background(), http.MethodGet, "/api/voices", classify.ClassAPICall)
	require.NoError(t, err)
	assert.True(t, IsOfflineEntry(entry))
}

func TestNetworkFirst_ServerErrorPassesThroughAndIsNotCached(t *testing.T) {
	f := &fakeFetcher{handler: func(method, url string) (*fetch.Response, error) {
		return &fetch.Response{StatusCode: http.StatusBadRequest, Body: []byte("bad voice")}, nil
	}}
	engine, stores := newTestEngine(f)
	ctx := context.Background()

	// A previously stored good entry must survive.
	key := cachestore.EntryKey(http.MethodGet, "/api/voices")
	require.NoError(t, stores.Put(ctx, "dynamic-v1", key, &cachestore.Entry{
		StatusCode: http.StatusOK, Body: []byte("good"),
	}))

	entry, err := engine.Serve(ctx, http.MethodGet, "/api/voices", classify.ClassAPICall)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, entry.StatusCode)
	assert.Equal(t, "bad voice", string(entry.Body))

	stored, err := stores.Get(ctx, "dynamic-v1", key)
	require.NoError(t, err)
	assert.Equal(t, "good", string(stored.Body), "application error must not overwrite a valid entry")
}

func TestStoreThenRefresh_ServesStoredImmediately(t *testing.T) {
	f := &fakeFetcher{handler: func(method, url string) (*fetch.Response, error) {
		return okResponse("refreshed")
	}}
	engine, stores := newTestEngine(f)
	ctx := context.Background()

	key := cachestore.EntryKey(http.MethodGet, "/audio/track1.mp3")
	require.NoError(t, stores.Put(ctx, "media-v1", key, &cachestore.Entry{
		StatusCode: http.StatusOK, Body: []byte("original"),
	}))

	entry, err := engine.Serve(ctx, http.MethodGet, "/audio/track1.mp3", classify.ClassMediaAsset)
	require.NoError(t, err)
	assert.Equal(t, "original", string(entry.Body), "stored entry returned before refresh lands")

	// The background refresh eventually overwrites the store.
	assert.Eventually(t, func() bool {
		stored, err := stores.Get(ctx, "media-v1", key)
		return err == nil && string(stored.Body) == "refreshed"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStoreThenRefresh_FailedRefreshLeavesStoreIntact(t *testing.T) {
	f := &fakeFetcher{handler: func(method, url string) (*fetch.Response, error) {
		return transportError()
	}}
	engine, stores := newTestEngine(f)
	ctx := context.Background()

	key := cachestore.EntryKey(http.MethodGet, "/audio/track1.mp3")
	require.NoError(t, stores.Put(ctx, "media-v1", key, &cachestore.Entry{
		StatusCode: http.StatusOK, Body: []byte("original"),
	}))

	entry, err := engine.Serve(ctx, http.MethodGet, "/audio/track1.mp3", classify.ClassMediaAsset)
	require.NoError(t, err)
	assert.Equal(t, "original", string(entry.Body))

	// Give the failed refresh a moment, then verify nothing was lost.
	time.Sleep(100 * time.Millisecond)
	stored, err := stores.Get(ctx, "media-v1", key)
	require.NoError(t, err)
	assert.Equal(t, "original", string(stored.Body))
}

func TestStoreThenRefresh_NoEntryBehavesLikeStoreFirst(t *testing.T) {
	f := &fakeFetcher{handler: func(method, url string) (*fetch.Response, error) {
		return okResponse("first fill")
	}}
	engine, stores := newTestEngine(f)
	ctx := context.Background()

	entry, err := engine.Serve(ctx, http.MethodGet, "/audio/track2.mp3", classify.ClassMediaAsset)
	require.NoError(t, err)
	assert.Equal(t, "first fill", string(entry.Body))

	stored, err := stores.Get(ctx, "media-v1", cachestore.EntryKey(http.MethodGet, "/audio/track2.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "first fill", string(stored.Body))
}

func TestPreload_StoresMediaEntry(t *testing.T) {
	f := &fakeFetcher{handler: func(method, url string) (*fetch.Response, error) {
		return okResponse("audio-bytes")
	}}
	engine, stores := newTestEngine(f)
	ctx := context.Background()

	require.NoError(t, engine.Preload(ctx, "/audio/track9.mp3"))

	stored, err := stores.Get(ctx, "media-v1", cachestore.EntryKey(http.MethodGet, "/audio/track9.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(stored.Body))
}

func TestPreload_FailureIsReported(t *testing.T) {
	f := &fakeFetcher{handler: func(method, url string) (*fetch.Response, error) {
		return transportError()
	}}
	engine, _ := newTestEngine(f)

	err := engine.Preload(context.Background(), "/audio/track9.mp3")
	assert.True(t, errors.Is(err, ErrPreloadFailed))
}
