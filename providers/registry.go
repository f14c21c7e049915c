package providers

import (
	"fmt"
	"sync"

	"github.com/overfs/overfs"
	"github.com/overfs/overfs/config"
)

// Factory builds a storage provider from a declarative mount entry.
type Factory func(entry config.MountEntry) (overfs.StorageProvider, error)

// Registry maps provider type keys to factories. The zero value is not
// usable; construct with NewRegistry.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register ties a factory to a type key. The first registration for a
// key wins; later ones are ignored.
func (r *Registry) Register(providerType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[providerType]; ok {
		return
	}
	r.factories[providerType] = factory
}

// GetFactory returns the factory registered for the given type key.
func (r *Registry) GetFactory(providerType string) (Factory, error) {
	r.mu.RLock()
	f, ok := r.factories[providerType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no factory for %q", providerType)
	}
	return f, nil
}

// New builds the provider named by entry.Provider.
func (r *Registry) New(entry config.MountEntry) (overfs.StorageProvider, error) {
	f, err := r.GetFactory(entry.Provider)
	if err != nil {
		return nil, err
	}
	return f(entry)
}
