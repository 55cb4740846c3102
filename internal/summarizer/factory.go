package summarizer

import (
	"errors"
	"fmt"

	"talentmatch/internal/config"
	"talentmatch/internal/port"
)

// ProviderFactory creates a Summarizer from a provider config.
type ProviderFactory func(cfg *config.SummarizerProviderConfig) (port.Summarizer, error)

// registry of provider factories, populated by init() in each provider package.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewSummarizer creates a Summarizer from a provider config using the registered factory.
func NewSummarizer(cfg *config.SummarizerProviderConfig) (port.Summarizer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown summarizer provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the configured provider chain. A single provider is
// returned as is; several are wrapped in a FallbackSummarizer.
func NewFromConfig(cfg *config.SummarizerConfig) (port.Summarizer, error) {
	pcs := cfg.Providers()
	if len(pcs) == 0 {
		return nil, errors.New("no summarizer provider configured")
	}
	chain := make([]port.Summarizer, 0, len(pcs))
	names := make([]string, 0, len(pcs))
	for _, pc := range pcs {
		s, err := NewSummarizer(pc)
		if err != nil {
			return nil, err
		}
		chain = append(chain, s)
		names = append(names, pc.Provider)
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return NewFallbackSummarizer(chain, names), nil
}
