package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// geminiOpenAIBaseURL is Gemini's OpenAI-compatible endpoint
const geminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// OpenAIProvider implements Provider over the Chat Completions API.
// It also serves Gemini through Gemini's OpenAI-compatible endpoint.
type OpenAIProvider struct {
	name         string
	client       *openai.Client
	config       Config
	defaultModel string
}

// NewOpenAIProvider creates an OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return newChatProvider("openai", config, config.BaseURL, openai.GPT4oMini), nil
}

// NewGeminiProvider creates a Gemini provider
func NewGeminiProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = geminiOpenAIBaseURL
	}
	return newChatProvider("gemini", config, baseURL, "gemini-1.5-flash"), nil
}

func newChatProvider(name string, config Config, baseURL, defaultModel string) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return &OpenAIProvider{
		name:         name,
		client:       openai.NewClientWithConfig(clientConfig),
		config:       config,
		defaultModel: defaultModel,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable lists models as a lightweight credential check
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Generate sends the prompt as a chat completion
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := modelFor(req, p.config, p.defaultModel)

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokensFor(req, p.config),
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	return &GenerateResponse{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
