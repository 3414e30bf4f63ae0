package cachestore

import (
	"context"
	"sync"
)

// MemoryBackend keeps stores in process memory. The default backend.
type MemoryBackend struct {
	mu     sync.RWMutex
	stores map[string]*memoryStore
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		stores: make(map[string]*memoryStore),
	}
}

// Open returns the named store, creating it if absent.
func (b *MemoryBackend) Open(ctx context.Context, name string) (Store, error) {
	b.mu.RLock()
	if s, ok := b.stores[name]; ok {
		b.mu.RUnlock()
		return s, nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.stores[name]; ok {
		return s, nil
	}
	s := &memoryStore{name: name, data: make(map[string][]byte)}
	b.stores[name] = s
	return s, nil
}

// List returns every store name.
func (b *MemoryBackend) List(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.stores))
	for name := range b.stores {
		names = append(names, name)
	}
	return names, nil
}

// Drop destroys the named store. Dropping an absent store is a no-op.
func (b *MemoryBackend) Drop(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.stores, name)
	return nil
}

// Close drops all stores.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stores = make(map[string]*memoryStore)
	return nil
}

// memoryStore is one in-memory key-value store.
type memoryStore struct {
	name string
	mu   sync.RWMutex
	data map[string][]byte
}

func (s *memoryStore) Name() string { return s.name }

func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	value, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrEntryMiss
	}
	return value, nil
}

func (s *memoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Copy so callers cannot mutate stored bytes afterwards.
	buf := make([]byte, len(value))
	copy(buf, value)
	s.data[key] = buf
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *memoryStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
