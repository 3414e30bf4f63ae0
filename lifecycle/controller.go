package lifecycle

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/AliGym19/voiceverse-sub001/cachestore"
	"github.com/AliGym19/voiceverse-sub001/fetch"
	"github.com/AliGym19/voiceverse-sub001/logger"
	"github.com/AliGym19/voiceverse-sub001/relay"
	"github.com/AliGym19/voiceverse-sub001/retry"
	"go.uber.org/zap"
)

// Fetcher downloads manifest assets during install. Satisfied by
// *fetch.Client.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// ClaimFunc hands already-open clients over to the freshly activated
// version so they pick it up without a manual reload.
type ClaimFunc func(ctx context.Context, version string) error

// Controller owns the install/activate machine for one target version.
type Controller struct {
	version    string
	manifest   []string
	stores     *cachestore.Manager
	fetcher    Fetcher
	dispatcher *relay.Dispatcher
	claim      ClaimFunc
	extraKeep  []string
	log        *logger.CtxZapLogger

	mu    sync.Mutex
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithClaim sets the client-claiming callback run at the end of
// activation.
func WithClaim(claim ClaimFunc) Option {
	return func(c *Controller) { c.claim = claim }
}

// WithKeepStores names stores the activation cleanup must preserve in
// addition to the current generations, such as the offline queue store.
func WithKeepStores(names ...string) Option {
	return func(c *Controller) { c.extraKeep = append(c.extraKeep, names...) }
}

// NewController creates a controller for the given build version and
// static-asset manifest.
func NewController(version string, manifest []string, stores *cachestore.Manager, fetcher Fetcher, dispatcher *relay.Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		version:    version,
		manifest:   manifest,
		stores:     stores,
		fetcher:    fetcher,
		dispatcher: dispatcher,
		state:      StateNew,
		log:        logger.GetLogger("lifecycle"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Version reports the build version this controller manages.
func (c *Controller) Version() string { return c.version }

// Install pre-populates the new static generation from the manifest.
// All or nothing: if any asset cannot be fetched and stored, the
// partially built generation is dropped and the state stays where it
// was, so a broken generation is never marked usable.
func (c *Controller) Install(ctx context.Context) error {
	if err := c.transition(StateNew, StateInstalling); err != nil {
		return err
	}

	staticStore := cachestore.GenerationName(cachestore.RoleStatic, c.version)
	c.log.InfoCtx(ctx, "install started",
		zap.String("version", c.version),
		zap.Int("manifest_size", len(c.manifest)))

	for _, url := range c.manifest {
		if err := c.installAsset(ctx, staticStore, url); err != nil {
			_ = c.stores.DropStore(ctx, staticStore)
			c.setState(StateNew)
			return ErrInstall.Wrapf(err, "asset %s", url)
		}
	}

	c.setState(StateInstalled)
	c.log.InfoCtx(ctx, "install complete", zap.String("version", c.version))

	// The new version is staged until activation; open clients keep
	// using the old one. Tell the foreground so it can offer a reload.
	if c.dispatcher != nil {
		c.dispatcher.DispatchAsync(ctx, relay.NewUpdateStagedEvent(c.version))
	}
	return nil
}

func (c *Controller) installAsset(ctx context.Context, storeName, url string) error {
	return retry.Do(ctx, func() error {
		resp, err := c.fetcher.Get(ctx, url)
		if err != nil {
			return err
		}
		if !resp.IsSuccess() {
			return ErrInstall.WithMsgf("asset %s returned status %d", url, resp.StatusCode)
		}
		entry := &cachestore.Entry{
			Method:     http.MethodGet,
			URL:        url,
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       resp.Body,
			StoredAt:   time.Now(),
		}
		return c.stores.Put(ctx, storeName, cachestore.EntryKey(http.MethodGet, url), entry)
	},
		retry.MaxAttempts(3),
		retry.Backoff(retry.ExponentialBackoff(200*time.Millisecond)),
	)
}

// Activate promotes the installed generation: every store not in the
// current-generation set (plus the configured keep list) is deleted,
// then open clients are claimed. After activation at most one
// generation per role exists.
func (c *Controller) Activate(ctx context.Context) error {
	if err := c.transition(StateInstalled, StateActivating); err != nil {
		return err
	}

	keep := append(cachestore.CurrentGenerations(c.version), c.extraKeep...)
	if err := c.stores.DeleteStoresNotIn(ctx, keep); err != nil {
		// Cleanup is retryable; stay installed so a later activate can
		// finish the job.
		c.setState(StateInstalled)
		return ErrActivate.Wrap(err)
	}

	if c.claim != nil {
		if err := c.claim(ctx, c.version); err != nil {
			c.log.WarnCtx(ctx, "client claim failed, clients reload on next navigation",
				zap.Error(err))
		}
	}

	c.setState(StateActive)
	c.log.InfoCtx(ctx, "activation complete", zap.String("version", c.version))
	return nil
}

// ForceActivate serves the FORCE_ACTIVATE message: promote a staged
// update immediately. Activating an already active version is a no-op.
func (c *Controller) ForceActivate(ctx context.Context) error {
	if c.State() == StateActive {
		return nil
	}
	return c.Activate(ctx)
}

func (c *Controller) transition(from, to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != from {
		return ErrInvalidTransition.WithMsgf("cannot move to %s from %s", to, c.state)
	}
	c.state = to
	return nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
