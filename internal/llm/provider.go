package llm

import (
	"context"

	"github.com/ppiankov/credence/internal/model"
)

// Provider is an external text-generation service
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate sends one prompt and returns the raw completion text
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest is a single prompt for a provider
type GenerateRequest struct {
	// System is the instruction preamble (optional)
	System string

	// Prompt is the user message
	Prompt string

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse is the provider's completion
type GenerateResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "gemini", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for one generation call
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings (ollama)
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns the defaults; the AI path is disabled until a provider is set
func DefaultConfig() Config {
	return Config{
		Timeout:   30,
		MaxTokens: 1500,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(cfg model.LLMConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		MaxTokens:  cfg.MaxTokens,
		HTTPProxy:  httpCfg.HTTPProxy,
		HTTPSProxy: httpCfg.HTTPSProxy,
	}
}

func maxTokensFor(req GenerateRequest, cfg Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return 1500
}

func modelFor(req GenerateRequest, cfg Config, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if cfg.Model != "" {
		return cfg.Model
	}
	return fallback
}
