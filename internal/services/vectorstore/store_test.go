package vectorstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/shortwatch/internal/models"
)

func TestCreateCollection(t *testing.T) {
	store := NewStore(nil)

	require.False(t, store.CollectionExists("press_news"))

	c, err := store.CreateCollection("press_news", 4)
	require.NoError(t, err)
	assert.Equal(t, "press_news", c.Name())
	assert.Equal(t, 4, c.Dimension())
	assert.True(t, store.CollectionExists("press_news"))

	_, err = store.CreateCollection("press_news", 4)
	assert.Error(t, err, "duplicate collection must be rejected")

	_, err = store.CreateCollection("bad", 0)
	assert.Error(t, err)
}

func TestUpsertDimensionMismatch(t *testing.T) {
	store := NewStore(nil)
	c, err := store.CreateCollection("press_news", 3)
	require.NoError(t, err)

	err = c.Upsert(Point{ID: "p1", Vector: []float32{1, 0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestSearchReturnsNearestWithPayload(t *testing.T) {
	store := NewStore(nil)
	c, err := store.CreateCollection("press_news", 2)
	require.NoError(t, err)

	points := []Point{
		{ID: "a", Vector: []float32{1, 0}, Payload: models.NewsArticle{Title: "exact", URL: "https://example.com/a"}},
		{ID: "b", Vector: []float32{0.9, 0.1}, Payload: models.NewsArticle{Title: "close", URL: "https://example.com/b"}},
		{ID: "c", Vector: []float32{0, 1}, Payload: models.NewsArticle{Title: "orthogonal", URL: "https://example.com/c"}},
	}
	for _, p := range points {
		require.NoError(t, c.Upsert(p))
	}

	results, err := c.Search([]float32{1, 0}, 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].Payload.Title)
	assert.Equal(t, "close", results[1].Payload.Title)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchLimit(t *testing.T) {
	store := NewStore(nil)
	c, err := store.CreateCollection("press_news", 2)
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		require.NoError(t, c.Upsert(Point{
			ID:      fmt.Sprintf("p%d", i),
			Vector:  []float32{1, float32(i)},
			Payload: models.NewsArticle{Title: fmt.Sprintf("t%d", i), URL: fmt.Sprintf("https://example.com/%d", i)},
		}))
	}

	results, err := c.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	// Every hit carries a payload matching a previously upserted point
	for _, hit := range results {
		assert.NotEmpty(t, hit.Payload.Title)
		assert.NotEmpty(t, hit.Payload.URL)
	}

	// Fewer points than the limit returns them all
	small, err := store.CreateCollection("small", 2)
	require.NoError(t, err)
	require.NoError(t, small.Upsert(Point{ID: "only", Vector: []float32{1, 1}, Payload: models.NewsArticle{Title: "t", URL: "u"}}))
	results, err = small.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestUpsertSameIDReplaces(t *testing.T) {
	store := NewStore(nil)
	c, err := store.CreateCollection("press_news", 2)
	require.NoError(t, err)

	require.NoError(t, c.Upsert(Point{ID: "p1", Vector: []float32{1, 0}, Payload: models.NewsArticle{Title: "old", URL: "u"}}))
	require.NoError(t, c.Upsert(Point{ID: "p1", Vector: []float32{0, 1}, Payload: models.NewsArticle{Title: "new", URL: "u"}}))

	assert.Equal(t, 1, c.Count())

	results, err := c.Search([]float32{0, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "new", results[0].Payload.Title)
}

func TestDistinctPointsWithIdenticalTitles(t *testing.T) {
	store := NewStore(nil)
	c, err := store.CreateCollection("press_news", 2)
	require.NoError(t, err)

	// Same title, different urls and ids: two distinct points
	require.NoError(t, c.Upsert(Point{ID: "id-1", Vector: []float32{1, 0}, Payload: models.NewsArticle{Title: "Same headline", URL: "https://example.com/a"}}))
	require.NoError(t, c.Upsert(Point{ID: "id-2", Vector: []float32{1, 0}, Payload: models.NewsArticle{Title: "Same headline", URL: "https://example.com/b"}}))

	assert.Equal(t, 2, c.Count())

	results, err := c.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NotEqual(t, results[0].ID, results[1].ID)
}

func TestSearchQueryDimensionMismatch(t *testing.T) {
	store := NewStore(nil)
	c, err := store.CreateCollection("press_news", 3)
	require.NoError(t, err)

	_, err = c.Search([]float32{1, 0}, 5)
	require.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 0}), 1e-9)
}
