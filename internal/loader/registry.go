package loader

import (
	"fmt"
	"sort"
	"sync"

	oerrors "github.com/expo/metro-core/internal/errors"
)

// Factory builds a loader.
type Factory func() Loader

type entry struct {
	once    sync.Once
	factory Factory
	loader  Loader
}

func (e *entry) get() Loader {
	e.once.Do(func() { e.loader = e.factory() })
	return e.loader
}

// Registry maps loader names to lazily constructed loaders. A loader is
// built on first use and shared afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries map[Name]*entry
}

// NewRegistry returns a registry holding the five built-in loaders.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[Name]*entry)}
	r.Register(App, NewApp)
	r.Register(ReactNativeModule, NewReactNativeModule)
	r.Register(ExpoModule, NewExpoModule)
	r.Register(UntranspiledModule, NewUntranspiledModule)
	r.Register(PassthroughModule, NewPassthroughModule)
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name Name, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &entry{factory: factory}
}

// Get returns the loader registered under name.
func (r *Registry) Get(name Name) (Loader, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("loader %q: %w", name, oerrors.ErrNotFound)
	}
	return e.get(), nil
}

// Names lists registered loader names in sorted order.
func (r *Registry) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]Name, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Default is the process-wide registry of built-in loaders.
var Default = sync.OnceValue(NewRegistry)
