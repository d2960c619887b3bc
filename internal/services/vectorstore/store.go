// Package vectorstore implements an in-memory vector collection with cosine
// similarity search. Collections live for the process lifetime; there is no
// deletion or eviction.
package vectorstore

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/shortwatch/internal/models"
)

// Point is one stored vector with its article payload.
type Point struct {
	ID      string
	Vector  []float32
	Payload models.NewsArticle
}

// ScoredPoint is a search hit with its cosine similarity score.
type ScoredPoint struct {
	Point
	Score float64
}

// Collection holds points of a fixed dimension.
type Collection struct {
	name      string
	dimension int

	mu     sync.RWMutex
	order  []string
	points map[string]Point
}

// Store manages named collections.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	logger      arbor.ILogger
}

// NewStore creates an empty vector store.
func NewStore(logger arbor.ILogger) *Store {
	return &Store{
		collections: make(map[string]*Collection),
		logger:      logger,
	}
}

// CollectionExists reports whether a collection has been created.
func (s *Store) CollectionExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok
}

// CreateCollection creates a collection sized to the embedding dimension.
func (s *Store) CreateCollection(name string, dimension int) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("collection dimension must be greater than 0, got %d", dimension)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; ok {
		return nil, fmt.Errorf("collection %q already exists", name)
	}

	c := &Collection{
		name:      name,
		dimension: dimension,
		points:    make(map[string]Point),
	}
	s.collections[name] = c

	if s.logger != nil {
		s.logger.Info().Str("collection", name).Int("dimension", dimension).Msg("Created vector collection")
	}

	return c, nil
}

// Collection returns an existing collection.
func (s *Store) Collection(name string) (*Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	return c, ok
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Dimension returns the collection's vector dimension.
func (c *Collection) Dimension() int {
	return c.dimension
}

// Upsert inserts or replaces a point by ID.
func (c *Collection) Upsert(p Point) error {
	if p.ID == "" {
		return fmt.Errorf("point ID is required")
	}
	if len(p.Vector) != c.dimension {
		return fmt.Errorf("vector dimension mismatch: collection %q expects %d, got %d", c.name, c.dimension, len(p.Vector))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.points[p.ID]; !exists {
		c.order = append(c.order, p.ID)
	}
	c.points[p.ID] = p

	return nil
}

// Count returns the number of stored points.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.points)
}

// Search returns the limit nearest points to the query vector by cosine
// similarity, highest score first, payload attached.
func (c *Collection) Search(vector []float32, limit int) ([]ScoredPoint, error) {
	if len(vector) != c.dimension {
		return nil, fmt.Errorf("query dimension mismatch: collection %q expects %d, got %d", c.name, c.dimension, len(vector))
	}
	if limit <= 0 {
		return nil, fmt.Errorf("search limit must be greater than 0, got %d", limit)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	scored := make([]ScoredPoint, 0, len(c.points))
	for _, id := range c.order {
		p := c.points[id]
		scored = append(scored, ScoredPoint{
			Point: p,
			Score: cosineSimilarity(vector, p.Vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	return scored, nil
}

// cosineSimilarity computes the cosine of the angle between two equal-length
// vectors. A zero vector scores 0 against everything.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
