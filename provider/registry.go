package provider

import (
	"fmt"
	"slices"
	"sync"
)

// Factory builds a Client from configuration. Backend packages register
// one per provider name in their init().
type Factory func(cfg Config) (Client, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a backend factory under the given name. It panics when
// the name is taken; two packages claiming the same provider is a
// programming error, not a runtime condition.
//
// Example:
//
//	func init() {
//	    provider.Register("ollama", func(cfg provider.Config) (provider.Client, error) {
//	        return NewClientWithConfig(fromProviderConfig(cfg))
//	    })
//	}
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, taken := registry[name]; taken {
		panic(fmt.Sprintf("provider %q already registered", name))
	}
	registry[name] = factory
}

// New builds a Client with the named backend's factory. Unknown names
// return ErrUnknownProvider.
//
//	client, err := provider.New("ollama", provider.Config{
//	    Model:   "llama3.1:8b",
//	    BaseURL: "http://localhost:11434",
//	})
func New(name string, cfg Config) (Client, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return factory(cfg)
}

// MustNew is New panicking on error, for program setup and tests where
// the backend is known to be linked in.
func MustNew(name string, cfg Config) Client {
	client, err := New(name, cfg)
	if err != nil {
		panic(fmt.Sprintf("provider.MustNew(%q): %v", name, err))
	}
	return client
}

// Available returns the registered provider names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether a backend claims the name.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	_, ok := registry[name]
	return ok
}

// Unregister removes a backend factory. Primarily for tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	delete(registry, name)
}

// ClearRegistry empties the registry. Primarily for tests.
func ClearRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry = make(map[string]Factory)
}
