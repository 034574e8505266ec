package media

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a thread-safe name→adapter registry. One registry exists per
// capability (Transcriber, Synthesizer, Vision), so the type parameter pins
// the capability contract at compile time.
type Registry[T any] struct {
	entries      map[string]T
	defaultEntry string
	mu           sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]T),
	}
}

// Register adds an adapter to the registry under the given name.
// If an adapter with the same name already exists, it is replaced.
func (r *Registry[T]) Register(name string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = v
}

// Get retrieves an adapter by name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[name]
	return v, ok
}

// Default returns the default adapter.
// Returns an error if no default has been set or the default name is not registered.
func (r *Registry[T]) Default() (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var zero T
	if r.defaultEntry == "" {
		return zero, fmt.Errorf("no default adapter set")
	}
	v, ok := r.entries[r.defaultEntry]
	if !ok {
		return zero, fmt.Errorf("default adapter %q not found in registry", r.defaultEntry)
	}
	return v, nil
}

// SetDefault designates an existing registered adapter as the default.
// Returns an error if the name is not registered.
func (r *Registry[T]) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return fmt.Errorf("adapter %q not registered", name)
	}
	r.defaultEntry = name
	return nil
}

// List returns the sorted names of all registered adapters.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes an adapter from the registry.
// If the removed adapter was the default, the default is cleared.
func (r *Registry[T]) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
	if r.defaultEntry == name {
		r.defaultEntry = ""
	}
}

// Len returns the number of registered adapters.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
