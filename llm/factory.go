package llm

import (
	"context"
	"fmt"

	"curator/config"
)

// NewProvider builds the provider client for a configured model block.
func NewProvider(ctx context.Context, m *config.Model) (Provider, error) {
	if m.APIKey == "" {
		return nil, fmt.Errorf("model '%s': api_key is empty", m.Name)
	}

	switch m.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(m.APIKey), nil
	case config.ProviderAnthropic:
		return NewAnthropicProvider(m.APIKey), nil
	case config.ProviderGemini:
		return NewGeminiProvider(ctx, m.APIKey)
	default:
		return nil, fmt.Errorf("model '%s': unsupported provider '%s'", m.Name, m.Provider)
	}
}
