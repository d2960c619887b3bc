package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
)

// DefaultHFTimeout is the default timeout for inference calls.
const DefaultHFTimeout = 2 * time.Minute

// HuggingFaceProvider posts prompts to a Hugging Face inference endpoint
// with bearer authentication. The response body is returned verbatim; the
// endpoint's response shape is model-dependent.
type HuggingFaceProvider struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     arbor.ILogger
}

// HFOption configures the HuggingFaceProvider.
type HFOption func(*HuggingFaceProvider)

// WithHFHTTPClient sets a custom HTTP client.
func WithHFHTTPClient(httpClient *http.Client) HFOption {
	return func(p *HuggingFaceProvider) {
		p.httpClient = httpClient
	}
}

// WithHFLogger sets a logger.
func WithHFLogger(logger arbor.ILogger) HFOption {
	return func(p *HuggingFaceProvider) {
		p.logger = logger
	}
}

// NewHuggingFaceProvider creates a new Hugging Face inference provider.
func NewHuggingFaceProvider(endpoint, token string, opts ...HFOption) *HuggingFaceProvider {
	p := &HuggingFaceProvider{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: DefaultHFTimeout,
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Complete posts {"inputs": prompt} to the inference endpoint and returns
// the raw response text. Failures surface as errors and abort the run.
func (p *HuggingFaceProvider) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return "", fmt.Errorf("failed to encode inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create inference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")

	if p.logger != nil {
		p.logger.Debug().Str("endpoint", p.endpoint).Int("prompt_length", len(prompt)).Msg("Calling inference endpoint")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read inference response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference endpoint returned status %d: %s", resp.StatusCode, string(raw))
	}

	return string(raw), nil
}

// GetProviderType returns the provider type.
func (p *HuggingFaceProvider) GetProviderType() ProviderType {
	return ProviderHuggingFace
}
