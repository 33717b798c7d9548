// Package llm provides the AI-completion backends used by the type
// classifier's fallback path. The backend is optional: when no provider is
// configured the classifier runs on keyword rules alone.
package llm

import (
	"fmt"
	"strings"

	"github.com/campnest/backend/internal/domain"
)

// Config selects and configures an AI provider.
type Config struct {
	Provider string // "openai", "anthropic", "ollama" or "" for none
	APIKey   string
	Model    string
	BaseURL  string
}

// NewClient builds a completion client for the configured provider. Returns
// (nil, nil) when no provider is configured.
func NewClient(cfg Config) (domain.AIClient, error) {
	switch strings.ToLower(cfg.Provider) {
	case "":
		return nil, nil

	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		// Ollama speaks the OpenAI-compatible API; the key is ignored but
		// the client requires one.
		baseURL := strings.TrimRight(cfg.BaseURL, "/")
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL += "/v1"
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
