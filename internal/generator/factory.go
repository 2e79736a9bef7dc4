package generator

import (
	"fmt"

	"facturio/internal/config"
	"facturio/internal/port"
)

// ProviderFactory is a function that creates a StructuredGenerator from a
// provider config.
type ProviderFactory func(cfg *config.GeneratorProviderConfig) (port.StructuredGenerator, error)

// registry of generation provider factories, populated explicitly via
// RegisterProvider at startup.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a generation provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewGenerator creates a StructuredGenerator from a provider config using
// the registered factory.
func NewGenerator(cfg *config.GeneratorProviderConfig) (port.StructuredGenerator, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown generation provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
