// Package policy executes the per-class caching strategies: store-first
// for static assets, network-first for API calls, store-then-refresh for
// media and navigations. Every path resolves to a delivered entry; raw
// transport and store failures never cross the policy boundary.
package policy

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/AliGym19/voiceverse-sub001/cachestore"
	"github.com/AliGym19/voiceverse-sub001/classify"
	"github.com/AliGym19/voiceverse-sub001/fetch"
	"github.com/AliGym19/voiceverse-sub001/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher issues origin requests. Satisfied by *fetch.Client.
type Fetcher interface {
	Do(ctx context.Context, method, url string, body []byte, header http.Header) (*fetch.Response, error)
}

// Engine routes each classified request through its caching strategy.
type Engine struct {
	fetcher        Fetcher
	stores         *cachestore.Manager
	version        string
	refreshTimeout time.Duration
	refreshGroup   singleflight.Group
	metrics        *Metrics
	log            *logger.CtxZapLogger
}

// Option configures the engine.
type Option func(*Engine)

// WithRefreshTimeout bounds background refresh fetches.
func WithRefreshTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.refreshTimeout = d
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates a policy engine bound to one cache version.
func NewEngine(fetcher Fetcher, stores *cachestore.Manager, version string, opts ...Option) *Engine {
	e := &Engine{
		fetcher:        fetcher,
		stores:         stores,
		version:        version,
		refreshTimeout: 30 * time.Second,
		log:            logger.GetLogger("policy"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics()
	}
	return e
}

// Serve resolves one intercepted request. The returned entry is always
// deliverable: a real response, a stored fallback, or a synthetic
// offline response. The error return is reserved for invariant
// violations, not for network or store conditions.
func (e *Engine) Serve(ctx context.Context, method, url string, class classify.Class) (*cachestore.Entry, error) {
	if e.stores == nil || e.fetcher == nil {
		return nil, ErrEngineUnconfigured
	}

	storeName := cachestore.GenerationName(class.Role(), e.version)
	key := cachestore.EntryKey(method, url)

	var entry *cachestore.Entry
	switch class {
	case classify.ClassStaticAsset:
		entry = e.storeFirst(ctx, storeName, key, method, url)
	case classify.ClassAPICall:
		entry = e.networkFirst(ctx, storeName, key, method, url)
	default:
		entry = e.storeThenRefresh(ctx, storeName, key, method, url)
	}
	return entry, nil
}

// storeFirst trusts the store fully; the network is only a fill path.
func (e *Engine) storeFirst(ctx context.Context, storeName, key, method, url string) *cachestore.Entry {
	if entry, err := e.stores.Get(ctx, storeName, key); err == nil {
		e.metrics.RecordHit(ctx, "store_first")
		return entry
	}
	e.metrics.RecordMiss(ctx, "store_first")

	resp, err := e.fetcher.Do(ctx, method, url, nil, nil)
	if err != nil {
		e.log.WarnCtx(ctx, "store-first fetch failed with empty store",
			zap.String("url", url), zap.Error(err))
		return e.offlineEntry(method, url)
	}

	entry := entryFromResponse(method, url, resp)
	if resp.IsSuccess() {
		e.put(ctx, storeName, key, entry)
	}
	return entry
}

// networkFirst prefers fresh data and tolerates staleness only as a
// fallback.
func (e *Engine) networkFirst(ctx context.Context, storeName, key, method, url string) *cachestore.Entry {
	resp, err := e.fetcher.Do(ctx, method, url, nil, nil)
	if err == nil {
		entry := entryFromResponse(method, url, resp)
		if resp.IsSuccess() {
			e.put(ctx, storeName, key, entry)
		}
		// 4xx/5xx from a reachable server passes through unmodified and
		// never overwrites a stored entry.
		return entry
	}

	if entry, storeErr := e.stores.Get(ctx, storeName, key); storeErr == nil {
		e.metrics.RecordFallback(ctx, "network_first")
		e.log.InfoCtx(ctx, "network-first falling back to store",
			zap.String("url", url))
		return entry
	}

	e.metrics.RecordMiss(ctx, "network_first")
	return e.offlineEntry(method, url)
}

// storeThenRefresh serves the stored entry immediately and revalidates
// in the background; absent an entry it degrades to store-first.
func (e *Engine) storeThenRefresh(ctx context.Context, storeName, key, method, url string) *cachestore.Entry {
	entry, err := e.stores.Get(ctx, storeName, key)
	if err != nil {
		return e.storeFirst(ctx, storeName, key, method, url)
	}
	e.metrics.RecordHit(ctx, "store_then_refresh")

	go e.refresh(storeName, key, method, url)
	return entry
}

// refresh re-fetches one entry in the background. Singleflight collapses
// concurrent refreshes of the same key; a failed fetch leaves the stored
// entry untouched.
func (e *Engine) refresh(storeName, key, method, url string) {
	_, _, _ = e.refreshGroup.Do(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), e.refreshTimeout)
		defer cancel()

		resp, err := e.fetcher.Do(ctx, method, url, nil, nil)
		if err != nil {
			e.log.DebugCtx(ctx, "background refresh failed",
				zap.String("url", url), zap.Error(err))
			return nil, err
		}
		if !resp.IsSuccess() {
			return nil, nil
		}
		e.put(ctx, storeName, key, entryFromResponse(method, url, resp))
		e.metrics.RecordRefresh(ctx)
		return nil, nil
	})
}

func (e *Engine) put(ctx context.Context, storeName, key string, entry *cachestore.Entry) {
	if err := e.stores.Put(ctx, storeName, key, entry); err != nil {
		// A failed write must not fail the request; the response is
		// already in hand.
		e.log.WarnCtx(ctx, "store write failed",
			zap.String("store", storeName),
			zap.String("key", key),
			zap.Error(err))
	}
}

// offlineEntry builds the synthetic 503 delivered when neither the
// network nor the store can answer.
func (e *Engine) offlineEntry(method, url string) *cachestore.Entry {
	body, _ := json.Marshal(OfflinePayload{
		Offline: true,
		Error:   "offline and no cached copy available",
		URL:     url,
	})
	return &cachestore.Entry{
		Method:     method,
		URL:        url,
		StatusCode: http.StatusServiceUnavailable,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       body,
		StoredAt:   time.Now(),
	}
}

// OfflinePayload is the structured body of a synthetic offline response,
// so callers can tell "no data" from malformed data.
type OfflinePayload struct {
	Offline bool   `json:"offline"`
	Error   string `json:"error"`
	URL     string `json:"url"`
}

// IsOfflineEntry reports whether an entry is a synthetic offline
// response rather than origin data.
func IsOfflineEntry(entry *cachestore.Entry) bool {
	if entry == nil || entry.StatusCode != http.StatusServiceUnavailable {
		return false
	}
	var payload OfflinePayload
	if err := json.Unmarshal(entry.Body, &payload); err != nil {
		return false
	}
	return payload.Offline
}

func entryFromResponse(method, url string, resp *fetch.Response) *cachestore.Entry {
	return &cachestore.Entry{
		Method:     method,
		URL:        url,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       resp.Body,
		StoredAt:   time.Now(),
	}
}

// Preload fetches a media asset and stores it proactively, for the
// PRELOAD_MEDIA control message.
func (e *Engine) Preload(ctx context.Context, url string) error {
	resp, err := e.fetcher.Do(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return ErrPreloadFailed.Wrap(err)
	}
	if !resp.IsSuccess() {
		return ErrPreloadFailed.WithData("status", resp.StatusCode)
	}
	storeName := cachestore.GenerationName(cachestore.RoleMedia, e.version)
	key := cachestore.EntryKey(http.MethodGet, url)
	entry := entryFromResponse(http.MethodGet, url, resp)
	if err := e.stores.Put(ctx, storeName, key, entry); err != nil {
		return ErrPreloadFailed.Wrap(err)
	}
	return nil
}
