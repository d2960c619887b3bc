package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/shortwatch/internal/common"
)

// GeminiProvider generates explanations with the Google Gemini API.
type GeminiProvider struct {
	config *common.GeminiConfig
	logger arbor.ILogger

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini explanation provider.
func NewGeminiProvider(config *common.GeminiConfig, logger arbor.ILogger) *GeminiProvider {
	return &GeminiProvider{
		config: config,
		logger: logger,
	}
}

func (p *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	p.client = client
	return client, nil
}

// Complete sends the prompt as a single user message and returns the
// response text.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := client.Models.GenerateContent(ctx, p.config.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini API")
	}

	if p.logger != nil {
		p.logger.Debug().
			Str("model", p.config.Model).
			Int("response_length", len(text)).
			Msg("Generated explanation with Gemini")
	}

	return text, nil
}

// GetProviderType returns the provider type.
func (p *GeminiProvider) GetProviderType() ProviderType {
	return ProviderGemini
}
