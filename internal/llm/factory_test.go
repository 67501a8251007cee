package llm

import (
	"errors"
	"testing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantNil  bool
		wantErr  error
	}{
		{"disabled", Config{}, "", true, nil},
		{"openai", Config{Provider: "openai", APIKey: "k"}, "openai", false, nil},
		{"gemini", Config{Provider: "Gemini", APIKey: "k"}, "gemini", false, nil},
		{"claude alias", Config{Provider: "claude", APIKey: "k"}, "anthropic", false, nil},
		{"ollama without key", Config{Provider: "ollama"}, "ollama", false, nil},
		{"openai without key", Config{Provider: "openai"}, "", true, ErrMissingAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantNil {
				if p != nil {
					t.Errorf("Expected nil provider, got %s", p.Name())
				}
				return
			}
			if p.Name() != tt.wantName {
				t.Errorf("Expected %s, got %s", tt.wantName, p.Name())
			}
		})
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "watson"}); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}
