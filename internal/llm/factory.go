package llm

import (
	"fmt"
	"strings"
	"sync"

	"reliefdocs/internal/config"
	"reliefdocs/internal/port"
)

// ProviderFactory is a function that creates an LLMBackend from a provider config.
type ProviderFactory func(cfg *config.LLMProviderConfig) (port.LLMBackend, error)

var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider registers a backend factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[strings.ToLower(name)] = factory
}

// NewBackend creates an LLMBackend from a provider config using the registered factory.
func NewBackend(cfg *config.LLMProviderConfig) (port.LLMBackend, error) {
	providersMu.RLock()
	factory, ok := providers[strings.ToLower(cfg.Provider)]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewBackendChain builds the configured provider chain. A single provider is
// returned as-is; several are wrapped in a FallbackBackend in config order.
func NewBackendChain(cfg *config.LLMConfig) (port.LLMBackend, error) {
	chain := cfg.ProviderChain()
	backends := make([]port.LLMBackend, 0, len(chain))
	names := make([]string, 0, len(chain))
	for _, pc := range chain {
		b, err := NewBackend(pc)
		if err != nil {
			return nil, err
		}
		if pc.RequestsPerMinute > 0 {
			b = NewRateLimitedBackend(b, pc.Provider, pc.RequestsPerMinute)
		}
		backends = append(backends, b)
		names = append(names, pc.Provider)
	}
	if len(backends) == 1 {
		return backends[0], nil
	}
	return NewFallbackBackend(backends, names), nil
}
