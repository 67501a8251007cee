package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey means a hosted provider was selected without credentials
var ErrMissingAPIKey = errors.New("llm: API key not configured")

// NewProvider creates a provider from configuration.
// An empty provider name returns (nil, nil): the AI path is disabled.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		if config.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewOpenAIProvider(config)

	case "gemini", "google":
		if config.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewGeminiProvider(config)

	case "anthropic", "claude":
		if config.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, gemini, anthropic, ollama)", config.Provider)
	}
}
