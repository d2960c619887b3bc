// Package news fetches company headlines from the configured news feed API.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/shortwatch/internal/models"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// feedResponse is the JSON envelope returned by the news endpoint.
type feedResponse struct {
	Feed []feedEntry `json:"feed"`
}

type feedEntry struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Client queries the templated news endpoint for a company's latest articles.
type Client struct {
	endpoint   string // template with one %s slot for the company symbol
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new news feed client.
func NewClient(endpoint, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// LatestNews retrieves the feed for a company. A non-200 response yields an
// empty list without an error; transport failures are returned to the
// caller. Entries missing a title or url are skipped.
func (c *Client) LatestNews(ctx context.Context, company string) ([]models.NewsArticle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	reqURL, err := c.buildURL(company)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Warn().
				Str("company", company).
				Int("status", resp.StatusCode).
				Msg("News endpoint returned non-200, treating as no articles")
		}
		return []models.NewsArticle{}, nil
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode news feed: %w", err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Feed))
	for _, entry := range feed.Feed {
		if entry.Title == "" || entry.URL == "" {
			continue
		}
		articles = append(articles, models.NewsArticle{Title: entry.Title, URL: entry.URL})
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("company", company).
			Int("articles", len(articles)).
			Msg("Fetched news feed")
	}

	return articles, nil
}

// buildURL substitutes the company symbol into the endpoint template and
// attaches the API key as the apikey query parameter.
func (c *Client) buildURL(company string) (string, error) {
	raw := fmt.Sprintf(c.endpoint, url.QueryEscape(company))

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid news endpoint: %w", err)
	}

	q := u.Query()
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
