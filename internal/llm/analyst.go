package llm

import (
	"context"
	"time"

	"github.com/ppiankov/credence/internal/model"
)

// DefaultTimeout bounds one analysis call
const DefaultTimeout = 30 * time.Second

// Analyst runs the credibility prompt against a provider and validates the reply
type Analyst struct {
	provider Provider
	timeout  time.Duration
}

// NewAnalyst creates an analyst; timeout <= 0 uses DefaultTimeout
func NewAnalyst(provider Provider, timeout time.Duration) *Analyst {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Analyst{provider: provider, timeout: timeout}
}

// ProviderName returns the wrapped provider's name
func (a *Analyst) ProviderName() string {
	return a.provider.Name()
}

// Analyze asks the provider for an assessment of content.
// Every failure is returned as *model.ExternalServiceError.
func (a *Analyst) Analyze(ctx context.Context, content, url string) (*Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.provider.Generate(ctx, GenerateRequest{
		System: SystemPrompt,
		Prompt: BuildPrompt(content, url),
	})
	if err != nil {
		return nil, &model.ExternalServiceError{Provider: a.provider.Name(), Err: err}
	}

	analysis, err := ParseAnalysis(resp.Text)
	if err != nil {
		return nil, &model.ExternalServiceError{Provider: a.provider.Name(), Err: err}
	}
	return analysis, nil
}
