package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestNews(t *testing.T) {
	var gotQuery string
	var gotAPIKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("tickers")
		gotAPIKey = r.URL.Query().Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"feed": [
				{"title": "Short sellers circle Eni", "url": "https://example.com/a"},
				{"title": "Enel results beat estimates", "url": "https://example.com/b"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/query?function=NEWS_SENTIMENT&tickers=%s", "test-key")

	articles, err := client.LatestNews(context.Background(), "ENI")
	require.NoError(t, err)

	assert.Equal(t, "ENI", gotQuery)
	assert.Equal(t, "test-key", gotAPIKey)
	require.Len(t, articles, 2)
	assert.Equal(t, "Short sellers circle Eni", articles[0].Title)
	assert.Equal(t, "https://example.com/a", articles[0].URL)
}

func TestLatestNewsNon200ReturnsEmpty(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusTooManyRequests, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client := NewClient(server.URL+"?tickers=%s", "test-key")

		articles, err := client.LatestNews(context.Background(), "ENI")
		require.NoError(t, err, "status %d must not surface an error", status)
		assert.Empty(t, articles)
		assert.NotNil(t, articles)

		server.Close()
	}
}

func TestLatestNewsSkipsIncompleteEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"feed": [
				{"title": "Complete", "url": "https://example.com/a"},
				{"title": "Missing url"},
				{"url": "https://example.com/c"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"?tickers=%s", "test-key")

	articles, err := client.LatestNews(context.Background(), "ENI")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Complete", articles[0].Title)
}

func TestLatestNewsEmptyFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"feed": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"?tickers=%s", "test-key")

	articles, err := client.LatestNews(context.Background(), "ENI")
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestLatestNewsBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"feed": `))
	}))
	defer server.Close()

	client := NewClient(server.URL+"?tickers=%s", "test-key")

	_, err := client.LatestNews(context.Background(), "ENI")
	require.Error(t, err)
}
