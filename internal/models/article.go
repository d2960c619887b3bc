package models

import "time"

// NewsArticle is one entry from the news feed API. Ephemeral, fetched per
// company query.
type NewsArticle struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// IndexedArticle is a news article with its embedding vector and generated
// point identifier. Stored only when persistence is enabled; otherwise the
// vector collection is recreated each process run.
type IndexedArticle struct {
	ID        string    `json:"id" badgerhold:"key"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Embedding []float32 `json:"embedding"`
	CreatedAt time.Time `json:"created_at"`
}
