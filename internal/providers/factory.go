// internal/providers/factory.go
package providers

import (
	"fmt"

	"pagegen-workers/internal/common/config"
)

// New builds the provider described by cfg.
func New(cfg config.ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case "openai":
		return NewOpenAIProvider(cfg.Name, cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens)
	case "anthropic":
		return NewAnthropicProvider(cfg.Name, cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens)
	case "genai":
		return NewGenAIProvider(cfg.Name, cfg.BaseURL, cfg.APIKey, cfg.MaxTokens, config.GetDuration(cfg.Timeout))
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}
