package consob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 1

	// rawFilePrefix is the filename prefix for saved downloads.
	rawFilePrefix = "pnc_consob_"
)

// browserHeaders mimic an ordinary desktop browser; the publication endpoint
// rejects bare client requests.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Encoding": "gzip, deflate, br",
	"Accept-Language": "en-US,en;q=0.5",
	"Connection":      "keep-alive",
}

// Client downloads the short-position spreadsheet and persists the raw bytes.
type Client struct {
	url        string
	destDir    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	now        func() time.Time
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

// WithClock sets the clock used for download filenames.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new CONSOB download client.
func NewClient(url, destDir string, opts ...ClientOption) *Client {
	c := &Client{
		url:     url,
		destDir: destDir,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch downloads the spreadsheet, saves the raw bytes to the destination
// directory and parses the three required sheets. Any failure is returned to
// the caller so the pipeline short-circuits instead of continuing with
// unset tables.
func (c *Client) Fetch(ctx context.Context) (*Workbook, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for name, value := range browserHeaders {
		req.Header.Set(name, value)
	}

	if c.logger != nil {
		c.logger.Debug().Str("url", c.url).Msg("Downloading short-position spreadsheet")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			URL:        c.url,
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	path, err := c.saveRaw(raw)
	if err != nil {
		return nil, err
	}

	if c.logger != nil {
		c.logger.Info().Str("path", path).Int("bytes", len(raw)).Msg("Spreadsheet downloaded and saved")
	}

	wb, err := ParseWorkbook(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	wb.RawPath = path

	return wb, nil
}

// saveRaw writes the raw spreadsheet under a date-stamped filename,
// pnc_consob_<DD-MM-YY>.xlsx.
func (c *Client) saveRaw(raw []byte) (string, error) {
	if err := os.MkdirAll(c.destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	filename := fmt.Sprintf("%s%s.xlsx", rawFilePrefix, c.now().Format("02-01-06"))
	path := filepath.Join(c.destDir, filename)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("failed to save spreadsheet to %s: %w", path, err)
	}

	return path, nil
}
