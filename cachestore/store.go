// Package cachestore manages the agent's versioned response stores. A
// Backend owns the physical stores (in-memory or redis); the Manager
// layers entry (de)serialization, generation naming and activation
// cleanup on top.
package cachestore

import "context"

// Store is one named key-value store holding serialized entries.
type Store interface {
	// Name returns the store's name, e.g. "static-v3".
	Name() string

	// Get returns the raw value. ErrEntryMiss on absence.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the value. Last write wins.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists every key in the store.
	Keys(ctx context.Context) ([]string, error)
}

// Backend creates, opens, lists and destroys named stores.
type Backend interface {
	// Open returns the named store, creating it if absent. Idempotent.
	Open(ctx context.Context, name string) (Store, error)

	// List returns the names of all existing stores.
	List(ctx context.Context) ([]string, error)

	// Drop destroys a store and all its entries.
	Drop(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}

// Serializer converts entries to and from bytes.
type Serializer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
	Name() string
}
