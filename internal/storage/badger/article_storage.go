package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/shortwatch/internal/models"
)

// ArticleStorage persists indexed articles (title, url, embedding) so the
// vector collection can be rebuilt across runs.
type ArticleStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewArticleStorage creates a new ArticleStorage instance
func NewArticleStorage(db *BadgerDB, logger arbor.ILogger) *ArticleStorage {
	return &ArticleStorage{
		db:     db,
		logger: logger,
	}
}

// SaveArticle inserts or updates an indexed article by point ID.
func (s *ArticleStorage) SaveArticle(article *models.IndexedArticle) error {
	if article.ID == "" {
		return fmt.Errorf("article ID is required")
	}

	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(article.ID, article); err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}
	return nil
}

// GetArticle retrieves an indexed article by point ID.
func (s *ArticleStorage) GetArticle(id string) (*models.IndexedArticle, error) {
	var article models.IndexedArticle
	if err := s.db.Store().Get(id, &article); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("article not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &article, nil
}

// ListArticles returns all persisted articles ordered by creation time.
func (s *ArticleStorage) ListArticles() ([]*models.IndexedArticle, error) {
	var articles []models.IndexedArticle
	err := s.db.Store().Find(&articles, badgerhold.Where("ID").Ne("").SortBy("CreatedAt"))
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	result := make([]*models.IndexedArticle, len(articles))
	for i := range articles {
		result[i] = &articles[i]
	}
	return result, nil
}

// CountArticles returns the number of persisted articles.
func (s *ArticleStorage) CountArticles() (int, error) {
	count, err := s.db.Store().Count(&models.IndexedArticle{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return int(count), nil
}
