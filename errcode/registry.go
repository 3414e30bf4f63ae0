package errcode

import (
	"fmt"
	"sync"
)

// Registry guards against two packages claiming the same numeric code.
type Registry struct {
	mu    sync.RWMutex
	codes map[int]string // code -> module:msg
}

var globalRegistry = &Registry{codes: make(map[int]string)}

// Register records an error code globally. Registering the same code with
// a different module/message panics at init time.
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register records an error code in this registry.
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s:%s", err.Module(), err.Message())
	if existing, ok := r.codes[err.Code()]; ok {
		if existing != key {
			panic(fmt.Sprintf("errcode: code %d already registered as %s, cannot register as %s",
				err.Code(), existing, key))
		}
		return err
	}
	r.codes[err.Code()] = key
	return err
}

// Count returns the number of registered codes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// Clear empties the registry. Test helper.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = make(map[int]string)
}
