// Package rag indexes news headlines into the vector store and produces a
// retrieval-grounded explanation of why a company carries short positions.
package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/shortwatch/internal/common"
	"github.com/ternarybob/shortwatch/internal/models"
	"github.com/ternarybob/shortwatch/internal/services/llm"
	"github.com/ternarybob/shortwatch/internal/services/vectorstore"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// NewsSource fetches recent articles for a company symbol.
type NewsSource interface {
	LatestNews(ctx context.Context, company string) ([]models.NewsArticle, error)
}

// ArticleStore persists indexed articles across process runs.
type ArticleStore interface {
	SaveArticle(article *models.IndexedArticle) error
	ListArticles() ([]*models.IndexedArticle, error)
}

// Service coordinates retrieval, indexing and explanation generation.
type Service struct {
	config   *common.RAGConfig
	embedder Embedder
	news     NewsSource
	provider llm.Provider
	store    *vectorstore.Store
	articles ArticleStore // nil unless persistence is enabled
	logger   arbor.ILogger
}

// NewService creates a new RAG service. articles may be nil when persistence
// is disabled.
func NewService(config *common.RAGConfig, embedder Embedder, news NewsSource, provider llm.Provider, store *vectorstore.Store, articles ArticleStore, logger arbor.ILogger) *Service {
	return &Service{
		config:   config,
		embedder: embedder,
		news:     news,
		provider: provider,
		store:    store,
		articles: articles,
		logger:   logger,
	}
}

// ensureCollection returns the working collection, creating it on first use.
// No collection is created until there is at least one article to index.
func (s *Service) ensureCollection() (*vectorstore.Collection, error) {
	if c, ok := s.store.Collection(s.config.Collection); ok {
		return c, nil
	}
	return s.store.CreateCollection(s.config.Collection, s.embedder.Dimension())
}

// IndexArticles embeds article titles and upserts them into the collection.
// Each article gets a fresh point ID, so re-indexing the same headline adds a
// new point rather than replacing one. Returns the number of points indexed.
func (s *Service) IndexArticles(ctx context.Context, articles []models.NewsArticle) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	collection, err := s.ensureCollection()
	if err != nil {
		return 0, err
	}

	indexed := 0
	for _, article := range articles {
		embedding, err := s.embedder.Embed(ctx, article.Title)
		if err != nil {
			return indexed, fmt.Errorf("failed to embed article %q: %w", article.Title, err)
		}

		point := vectorstore.Point{
			ID:      common.NewPointID(),
			Vector:  embedding,
			Payload: article,
		}
		if err := collection.Upsert(point); err != nil {
			return indexed, fmt.Errorf("failed to index article %q: %w", article.Title, err)
		}
		indexed++

		if s.articles != nil {
			record := &models.IndexedArticle{
				ID:        point.ID,
				Title:     article.Title,
				URL:       article.URL,
				Embedding: embedding,
				CreatedAt: time.Now(),
			}
			if err := s.articles.SaveArticle(record); err != nil {
				s.logger.Warn().Err(err).Str("title", article.Title).Msg("Failed to persist indexed article")
			}
		}
	}

	s.logger.Info().
		Str("collection", s.config.Collection).
		Int("indexed", indexed).
		Msg("Indexed news articles")

	return indexed, nil
}

// ReplayPersisted loads previously persisted articles back into the vector
// collection. Called once at startup when persistence is enabled.
func (s *Service) ReplayPersisted() (int, error) {
	if s.articles == nil {
		return 0, nil
	}

	records, err := s.articles.ListArticles()
	if err != nil {
		return 0, fmt.Errorf("failed to load persisted articles: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	collection, err := s.ensureCollection()
	if err != nil {
		return 0, err
	}

	replayed := 0
	for _, record := range records {
		point := vectorstore.Point{
			ID:     record.ID,
			Vector: record.Embedding,
			Payload: models.NewsArticle{
				Title: record.Title,
				URL:   record.URL,
			},
		}
		if err := collection.Upsert(point); err != nil {
			s.logger.Warn().Err(err).Str("id", record.ID).Msg("Skipping persisted article with stale embedding")
			continue
		}
		replayed++
	}

	s.logger.Info().
		Str("collection", s.config.Collection).
		Int("replayed", replayed).
		Msg("Replayed persisted articles into vector collection")

	return replayed, nil
}

// Explain fetches recent news for the company, indexes it, retrieves the
// closest headlines to the configured query, and asks the provider for an
// explanation. When no articles are available the provider is not called and
// an empty explanation is returned.
func (s *Service) Explain(ctx context.Context, company string) (string, error) {
	articles, err := s.news.LatestNews(ctx, company)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve news for %s: %w", company, err)
	}

	if _, err := s.IndexArticles(ctx, articles); err != nil {
		return "", err
	}

	collection, ok := s.store.Collection(s.config.Collection)
	if !ok || collection.Count() == 0 {
		s.logger.Warn().Str("company", company).Msg("No indexed articles, skipping explanation")
		return "", nil
	}

	queryEmbedding, err := s.embedder.Embed(ctx, s.config.Query)
	if err != nil {
		return "", fmt.Errorf("failed to embed retrieval query: %w", err)
	}

	results, err := collection.Search(queryEmbedding, s.config.TopK)
	if err != nil {
		return "", fmt.Errorf("vector search failed: %w", err)
	}

	prompt := buildPrompt(company, results)

	s.logger.Debug().
		Str("company", company).
		Str("provider", string(s.provider.GetProviderType())).
		Int("headlines", len(results)).
		Msg("Requesting short position explanation")

	explanation, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("explanation generation failed: %w", err)
	}

	return explanation, nil
}

func buildPrompt(company string, results []vectorstore.ScoredPoint) string {
	summaries := make([]string, 0, len(results))
	for _, res := range results {
		summaries = append(summaries, fmt.Sprintf("Title: %s", res.Payload.Title))
	}

	return fmt.Sprintf(
		"Based on the following news articles, provide an explanation on why there might be short positions in %s:\n\n%s\n\n",
		company,
		strings.Join(summaries, "\n"),
	)
}
