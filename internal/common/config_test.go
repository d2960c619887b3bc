package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// validConfig returns a configuration that passes Validate.
func validConfig() *Config {
	config := NewDefaultConfig()
	config.Consob.URL = "https://example.com/consob.xlsx"
	config.News.Endpoint = "https://example.com/news?tickers=%s"
	config.News.APIKey = "news-key"
	config.RAG.InferenceEndpoint = "https://example.com/inference"
	config.RAG.HFToken = "hf-token"
	config.Gemini.APIKey = "gemini-key"
	return config
}

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "huggingface", config.RAG.Provider)
	assert.Equal(t, "press_news", config.RAG.Collection)
	assert.Equal(t, "Short selling", config.RAG.Query)
	assert.Equal(t, 5, config.RAG.TopK)
	assert.Equal(t, 768, config.Gemini.EmbedDimension)
	assert.Equal(t, "0 9 * * 1-5", config.Watch.Schedule)
	assert.False(t, config.Storage.Persist)
}

func TestLoadFromFilesMergesInOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.toml", `
[consob]
url = "https://first.example.com/consob.xlsx"
dest_dir = "/tmp/first"

[rag]
top_k = 3
`)
	second := writeFile(t, dir, "second.toml", `
[consob]
url = "https://second.example.com/consob.xlsx"
`)

	config, err := LoadFromFiles("", first, second)
	require.NoError(t, err)

	assert.Equal(t, "https://second.example.com/consob.xlsx", config.Consob.URL, "later file wins")
	assert.Equal(t, "/tmp/first", config.Consob.DestDir, "earlier value survives when not overridden")
	assert.Equal(t, 3, config.RAG.TopK)
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	_, err := LoadFromFiles("", "/nonexistent/shortwatch.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromFilesAppliesSecrets(t *testing.T) {
	dir := t.TempDir()
	secrets := writeFile(t, dir, "secrets.yaml", `
news_api_key: secret-news-key
hugging_face_user_token: secret-hf-token
gemini_api_key: secret-gemini-key
anthropic_api_key: secret-anthropic-key
`)

	config, err := LoadFromFiles(secrets)
	require.NoError(t, err)

	assert.Equal(t, "secret-news-key", config.News.APIKey)
	assert.Equal(t, "secret-hf-token", config.RAG.HFToken)
	assert.Equal(t, "secret-gemini-key", config.Gemini.APIKey)
	assert.Equal(t, "secret-anthropic-key", config.Claude.APIKey)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SHORTWATCH_CONSOB_URL", "https://env.example.com/consob.xlsx")
	t.Setenv("SHORTWATCH_RAG_PROVIDER", "claude")
	t.Setenv("SHORTWATCH_GEMINI_EMBED_DIMENSION", "384")
	t.Setenv("SHORTWATCH_STORAGE_PERSIST", "true")

	config, err := LoadFromFiles("")
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/consob.xlsx", config.Consob.URL)
	assert.Equal(t, "claude", config.RAG.Provider)
	assert.Equal(t, 384, config.Gemini.EmbedDimension)
	assert.True(t, config.Storage.Persist)
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing consob url", func(c *Config) { c.Consob.URL = "" }},
		{"malformed consob url", func(c *Config) { c.Consob.URL = "not a url" }},
		{"missing news endpoint", func(c *Config) { c.News.Endpoint = "" }},
		{"endpoint without symbol slot", func(c *Config) { c.News.Endpoint = "https://example.com/news" }},
		{"missing news api key", func(c *Config) { c.News.APIKey = "" }},
		{"unknown provider", func(c *Config) { c.RAG.Provider = "openai" }},
		{"missing gemini key", func(c *Config) { c.Gemini.APIKey = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestValidateProviderCredentials(t *testing.T) {
	config := validConfig()
	config.RAG.HFToken = ""
	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rag.hf_token")

	config = validConfig()
	config.RAG.Provider = "claude"
	err = config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claude.api_key")

	config.Claude.APIKey = "anthropic-key"
	require.NoError(t, config.Validate())
}

func TestValidateSchedule(t *testing.T) {
	config := validConfig()
	config.Watch.Enabled = true
	config.Watch.Schedule = "not a schedule"
	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch.schedule")

	config.Watch.Schedule = "0 9 * * 1-5"
	require.NoError(t, config.Validate())
}

func TestValidateTimeoutStrings(t *testing.T) {
	config := validConfig()
	config.Consob.RequestTimeout = "thirty seconds"
	assert.Error(t, config.Validate())

	config = validConfig()
	config.Gemini.Timeout = "5x"
	assert.Error(t, config.Validate())
}

func TestDurationOr(t *testing.T) {
	assert.Equal(t, 30*time.Second, DurationOr("", 30*time.Second))
	assert.Equal(t, 30*time.Second, DurationOr("garbage", 30*time.Second))
	assert.Equal(t, 2*time.Minute, DurationOr("2m", 30*time.Second))
}
