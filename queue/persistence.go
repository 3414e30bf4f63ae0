package queue

import (
	"context"
	"sort"
	"sync"
)

// Persistence is the injected key-value store behind the queue, keeping
// the Coordinator storage-agnostic.
type Persistence interface {
	// Save inserts or updates a mutation.
	Save(ctx context.Context, m *Mutation) error

	// Get returns a mutation by id. ErrNotFound on absence.
	Get(ctx context.Context, id string) (*Mutation, error)

	// Delete removes a mutation. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all mutations in FIFO order of enqueue time.
	List(ctx context.Context) ([]*Mutation, error)

	// Clear removes every mutation.
	Clear(ctx context.Context) error

	// Close releases storage resources.
	Close() error
}

// MemoryPersistence keeps mutations in process memory. Used in tests and
// as a fallback when no sqlite path is configured.
type MemoryPersistence struct {
	mu   sync.RWMutex
	data map[string]*Mutation
}

// NewMemoryPersistence creates an empty in-memory persistence.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{data: make(map[string]*Mutation)}
}

// Save stores a copy of the mutation.
func (p *MemoryPersistence) Save(ctx context.Context, m *Mutation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	clone := *m
	p.data[m.ID] = &clone
	return nil
}

// Get returns a copy of the mutation.
func (p *MemoryPersistence) Get(ctx context.Context, id string) (*Mutation, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *m
	return &clone, nil
}

// Delete removes the mutation.
func (p *MemoryPersistence) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.data, id)
	return nil
}

// List returns copies in FIFO order.
func (p *MemoryPersistence) List(ctx context.Context) ([]*Mutation, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Mutation, 0, len(p.data))
	for _, m := range p.data {
		clone := *m
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EnqueuedAt.Equal(out[j].EnqueuedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].EnqueuedAt.Before(out[j].EnqueuedAt)
	})
	return out, nil
}

// Clear removes everything.
func (p *MemoryPersistence) Clear(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = make(map[string]*Mutation)
	return nil
}

// Close is a no-op.
func (p *MemoryPersistence) Close() error { return nil }
