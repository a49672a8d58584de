package gateway

import (
	"fmt"
	"sort"

	"orthocode/internal/config"
	"orthocode/internal/port"
)

// ProviderFactory is a function that creates an AIGateway from the gateway config.
type ProviderFactory func(cfg *config.GatewayConfig) (port.AIGateway, error)

// registry of gateway provider factories, populated by init() in each provider package.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a gateway provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// Providers returns the registered provider names in sorted order.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates an AIGateway from the config using the registered factory.
// It returns ErrNotConfigured when no API key is set so callers can still serve
// CONFIG_ERROR responses instead of refusing to start.
func New(cfg *config.GatewayConfig) (port.AIGateway, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown gateway provider: %s", cfg.Provider)
	}
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	return factory(cfg)
}
