package core

import (
	"fmt"
	"sync"
)

// Factory creates a provider instance for a given metadata base URL.
type Factory func(baseURL string, getter Getter) Provider

var (
	factories = make(map[Family]Factory)
	defaults  = make(map[Family]string)
	mu        sync.RWMutex
)

// Register adds a provider factory for a loader family.
// defaultURL is the canonical upstream metadata URL for the family.
func Register(family Family, defaultURL string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[family] = factory
	defaults[family] = defaultURL
}

// New creates a provider for the given loader family.
// If baseURL is empty, the family's default upstream URL is used.
func New(family Family, baseURL string, getter Getter) (Provider, error) {
	mu.RLock()
	factory, ok := factories[family]
	defaultURL := defaults[family]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown loader family: %s", family)
	}

	if baseURL == "" {
		baseURL = defaultURL
	}

	return factory(baseURL, getter), nil
}

// SupportedFamilies returns all registered loader families.
func SupportedFamilies() []Family {
	mu.RLock()
	defer mu.RUnlock()

	families := make([]Family, 0, len(factories))
	for f := range factories {
		families = append(families, f)
	}
	return families
}

// DefaultURL returns the default upstream metadata URL for a family.
func DefaultURL(family Family) string {
	mu.RLock()
	defer mu.RUnlock()
	return defaults[family]
}
