// Package generator selects and builds the streaming language model client.
package generator

import (
	"fmt"
	"sort"
	"sync"

	"pagecrafter/internal/config"
	"pagecrafter/internal/domain"
	"pagecrafter/internal/port"
)

// ProviderFactory creates a Generator from the generator config.
type ProviderFactory func(cfg *config.GeneratorConfig) (port.Generator, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var (
	mu        sync.RWMutex
	providers = map[string]ProviderFactory{}
)

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// Providers lists the registered provider names.
func Providers() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewGenerator creates a Generator using the registered factory for cfg.Provider.
// It returns domain.ErrGeneratorNotConfigured when no API key is set.
func NewGenerator(cfg *config.GeneratorConfig) (port.Generator, error) {
	mu.RLock()
	factory, ok := providers[cfg.Provider]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Provider, domain.ErrGeneratorNotConfigured)
	}
	return factory(cfg)
}
