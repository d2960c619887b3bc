// Package embeddings generates vector embeddings for text via the Gemini API.
package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/shortwatch/internal/common"
)

// Service wraps the Gemini embedding model.
type Service struct {
	client    *genai.Client
	model     string
	dimension int
	timeout   time.Duration
	logger    arbor.ILogger
}

// NewService creates a new embedding service backed by Gemini.
func NewService(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*Service, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required for the embedding service")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Service{
		client:    client,
		model:     config.EmbedModel,
		dimension: config.EmbedDimension,
		timeout:   common.DurationOr(config.Timeout, 2*time.Minute),
		logger:    logger,
	}, nil
}

// Embed creates a vector embedding for text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()

	outputDim := int32(s.dimension)
	result, err := s.client.Models.EmbedContent(
		timeoutCtx,
		s.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &outputDim},
	)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	var embedding []float32
	if result != nil && len(result.Embeddings) > 0 {
		embedding = result.Embeddings[0].Values
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned from API")
	}
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.dimension, len(embedding))
	}

	if s.logger != nil {
		s.logger.Debug().
			Int("text_length", len(text)).
			Int("embedding_dim", len(embedding)).
			Dur("duration", time.Since(start)).
			Msg("Generated embedding")
	}

	return embedding, nil
}

// Dimension returns the embedding output dimensionality.
func (s *Service) Dimension() int {
	return s.dimension
}

// ModelName returns the embedding model name.
func (s *Service) ModelName() string {
	return s.model
}
