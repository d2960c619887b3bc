// Package llm provides explanation providers for the RAG step. The default
// provider posts to a Hugging Face inference endpoint; Claude and Gemini are
// available as alternatives.
package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/shortwatch/internal/common"
)

// ProviderType identifies an explanation provider.
type ProviderType string

const (
	// ProviderHuggingFace posts to a Hugging Face inference endpoint
	ProviderHuggingFace ProviderType = "huggingface"
	// ProviderClaude uses the Anthropic Claude API
	ProviderClaude ProviderType = "claude"
	// ProviderGemini uses the Google Gemini API
	ProviderGemini ProviderType = "gemini"
)

// Provider generates an explanation from a prompt.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetProviderType() ProviderType
}

// NewProvider creates the explanation provider selected by configuration.
func NewProvider(config *common.Config, logger arbor.ILogger) (Provider, error) {
	switch ProviderType(config.RAG.Provider) {
	case ProviderHuggingFace:
		return NewHuggingFaceProvider(config.RAG.InferenceEndpoint, config.RAG.HFToken, WithHFLogger(logger)), nil
	case ProviderClaude:
		return NewClaudeProvider(&config.Claude, logger), nil
	case ProviderGemini:
		return NewGeminiProvider(&config.Gemini, logger), nil
	default:
		return nil, fmt.Errorf("unsupported explanation provider %q", config.RAG.Provider)
	}
}
