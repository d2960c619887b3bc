package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/shortwatch/internal/common"
)

// ClaudeProvider generates explanations with the Anthropic Claude API.
type ClaudeProvider struct {
	config *common.ClaudeConfig
	logger arbor.ILogger

	once   sync.Once
	client anthropic.Client
}

// NewClaudeProvider creates a new Claude explanation provider.
func NewClaudeProvider(config *common.ClaudeConfig, logger arbor.ILogger) *ClaudeProvider {
	return &ClaudeProvider{
		config: config,
		logger: logger,
	}
}

// Complete sends the prompt as a single user message and returns the
// concatenated text blocks of the response.
func (p *ClaudeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	p.once.Do(func() {
		p.client = anthropic.NewClient(option.WithAPIKey(p.config.APIKey))
	})

	maxTokens := p.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from Claude API")
	}

	if p.logger != nil {
		p.logger.Debug().
			Str("model", p.config.Model).
			Int("response_length", text.Len()).
			Msg("Generated explanation with Claude")
	}

	return text.String(), nil
}

// GetProviderType returns the provider type.
func (p *ClaudeProvider) GetProviderType() ProviderType {
	return ProviderClaude
}
