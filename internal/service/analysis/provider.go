package analysis

import (
	"fmt"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/haowjy/meridian-llm-go/providers/anthropic"
	"github.com/haowjy/meridian-llm-go/providers/lorem"
)

// Provider names accepted by NewProvider
const (
	ProviderAnthropic = "anthropic"
	ProviderLorem     = "lorem"
)

// NewProvider returns a provider instance for the given provider name
//
// Supported providers:
//   - "anthropic" - Claude models via Anthropic API
//   - "lorem" - Mock provider for local runs (no API key required)
func NewProvider(providerName, apiKey string) (llmprovider.Provider, error) {
	switch providerName {
	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		provider, err := anthropic.NewProvider(apiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
		}
		return provider, nil

	case ProviderLorem:
		return lorem.NewProvider(), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

// DefaultModel is the model used when none is configured
func DefaultModel(providerName string) string {
	switch providerName {
	case ProviderAnthropic:
		return "claude-haiku-4-5-20251001"
	default:
		return "lorem-fast"
	}
}
