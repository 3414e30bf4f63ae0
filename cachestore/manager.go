package cachestore

import (
	"context"
	"errors"
	"time"

	"github.com/AliGym19/voiceverse-sub001/logger"
	"go.uber.org/zap"
)

// Manager is the agent's view of the store set: entry-level reads and
// writes plus the activation-time store lifecycle.
type Manager struct {
	backend    Backend
	serializer Serializer
	log        *logger.CtxZapLogger
}

// NewManager creates a manager over the backend. A nil serializer
// defaults to JSON.
func NewManager(backend Backend, serializer Serializer) *Manager {
	if serializer == nil {
		serializer = NewJSONSerializer()
	}
	return &Manager{
		backend:    backend,
		serializer: serializer,
		log:        logger.GetLogger("cachestore"),
	}
}

// Open returns the named store, creating it lazily.
func (m *Manager) Open(ctx context.Context, name string) (Store, error) {
	return m.backend.Open(ctx, name)
}

// Get reads and deserializes an entry. A corrupt entry is dropped and
// reported as a miss so a bad write can never wedge a request path.
func (m *Manager) Get(ctx context.Context, storeName, key string) (*Entry, error) {
	store, err := m.backend.Open(ctx, storeName)
	if err != nil {
		return nil, ErrStoreGet.Wrap(err)
	}
	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrEntryMiss) {
			return nil, ErrEntryMiss
		}
		// Unexpected backend failure reads as a miss per the error
		// taxonomy, but is worth logging.
		m.log.WarnCtx(ctx, "store read failed, treating as miss",
			zap.String("store", storeName),
			zap.String("key", key),
			zap.Error(err))
		return nil, ErrEntryMiss
	}

	var entry Entry
	if err := m.serializer.Deserialize(raw, &entry); err != nil {
		m.log.WarnCtx(ctx, "corrupt entry dropped",
			zap.String("store", storeName),
			zap.String("key", key),
			zap.Error(err))
		_ = store.Delete(ctx, key)
		return nil, ErrEntryMiss
	}
	return &entry, nil
}

// Put stores an entry. Last write wins; callers only pass successful
// responses, so overwriting always moves the entry forward in time.
func (m *Manager) Put(ctx context.Context, storeName, key string, entry *Entry) error {
	store, err := m.backend.Open(ctx, storeName)
	if err != nil {
		return ErrStoreSet.Wrap(err)
	}
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now()
	}
	raw, err := m.serializer.Serialize(entry)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, raw)
}

// ListStores returns every existing store name.
func (m *Manager) ListStores(ctx context.Context) ([]string, error) {
	return m.backend.List(ctx)
}

// DeleteStoresNotIn drops every store whose name is not in keep. This is
// the activation cleanup: current-vs-superseded is a set membership test.
func (m *Manager) DeleteStoresNotIn(ctx context.Context, keep []string) error {
	keepSet := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		keepSet[name] = struct{}{}
	}

	names, err := m.backend.List(ctx)
	if err != nil {
		return ErrBackend.Wrap(err)
	}
	for _, name := range names {
		if _, ok := keepSet[name]; ok {
			continue
		}
		if err := m.backend.Drop(ctx, name); err != nil {
			return err
		}
		m.log.InfoCtx(ctx, "superseded store deleted", zap.String("store", name))
	}
	return nil
}

// DropStore removes one store and its entries. Used to discard a
// partially built generation after a failed install.
func (m *Manager) DropStore(ctx context.Context, name string) error {
	if err := m.backend.Drop(ctx, name); err != nil {
		return ErrStoreDrop.Wrap(err)
	}
	m.log.InfoCtx(ctx, "store dropped", zap.String("store", name))
	return nil
}

// PurgeAll drops every managed store. Idempotent.
func (m *Manager) PurgeAll(ctx context.Context) error {
	return m.DeleteStoresNotIn(ctx, nil)
}

// Close releases the backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}
