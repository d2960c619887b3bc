package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Consob      ConsobConfig  `toml:"consob"`
	News        NewsConfig    `toml:"news"`
	RAG         RAGConfig     `toml:"rag"`
	Gemini      GeminiConfig  `toml:"gemini"`
	Claude      ClaudeConfig  `toml:"claude"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Watch       WatchConfig   `toml:"watch"`
}

// ConsobConfig contains the short-position spreadsheet source settings
type ConsobConfig struct {
	URL            string `toml:"url" validate:"required,url"`  // Published xlsx endpoint
	DestDir        string `toml:"dest_dir" validate:"required"` // Directory for raw downloads
	RequestTimeout string `toml:"request_timeout"`              // Duration string (default: "30s")
}

// NewsConfig contains the news feed API settings
type NewsConfig struct {
	Endpoint       string `toml:"endpoint" validate:"required,contains=%s"` // Template URL with one %s slot for the company symbol
	APIKey         string `toml:"api_key" validate:"required"`              // Sent as the apikey query parameter
	RequestTimeout string `toml:"request_timeout"`                          // Duration string (default: "30s")
	RateLimit      int    `toml:"rate_limit"`                               // Requests per second (default: 5)
}

// RAGConfig contains retrieval and explanation settings
type RAGConfig struct {
	Provider          string `toml:"provider" validate:"oneof=huggingface claude gemini"` // Explanation provider (default: "huggingface")
	InferenceEndpoint string `toml:"inference_endpoint"`                                  // Hugging Face inference endpoint URL
	HFToken           string `toml:"hf_token"`                                            // Bearer token for inference calls
	Collection        string `toml:"collection"`                                          // Vector collection name (default: "press_news")
	Query             string `toml:"query"`                                               // Retrieval query (default: "Short selling")
	TopK              int    `toml:"top_k"`                                               // Search result limit (default: 5)
	DefaultSymbol     string `toml:"default_symbol"`                                      // Fallback company symbol when analysis yields none
}

// GeminiConfig contains Google Gemini API configuration (embeddings, optional chat)
type GeminiConfig struct {
	APIKey         string `toml:"api_key" validate:"required"` // Embeddings always run through Gemini
	Model          string `toml:"model"`                       // Chat model (default: "gemini-3-flash-preview")
	EmbedModel     string `toml:"embed_model"`                 // Embedding model (default: "gemini-embedding-001")
	EmbedDimension int    `toml:"embed_dimension"`             // Embedding output dimensionality (default: 768)
	Timeout        string `toml:"timeout"`                     // Operation timeout as duration string (default: "2m")
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey    string `toml:"api_key"`    // Required only when rag.provider = "claude"
	Model     string `toml:"model"`      // Model for explanations (default: "claude-haiku-3-5-20241022")
	MaxTokens int    `toml:"max_tokens"` // Maximum tokens in response (default: 1024)
}

// StorageConfig controls optional persistence of indexed articles
type StorageConfig struct {
	Persist bool         `toml:"persist"` // Replay persisted articles into the collection on startup
	Badger  BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path string `toml:"path"` // Database directory path
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// WatchConfig enables cron-driven repeated runs
type WatchConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule (default: "0 9 * * 1-5")
}

// secretsDocument is the YAML key/value document the pipeline reads API
// credentials from. Keys mirror the deployment's secrets store.
type secretsDocument struct {
	NewsAPIKey           string `yaml:"news_api_key"`
	HuggingFaceUserToken string `yaml:"hugging_face_user_token"`
	GeminiAPIKey         string `yaml:"gemini_api_key"`
	AnthropicAPIKey      string `yaml:"anthropic_api_key"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Consob: ConsobConfig{
			DestDir:        "./data/downloads",
			RequestTimeout: "30s",
		},
		News: NewsConfig{
			RequestTimeout: "30s",
			RateLimit:      5,
		},
		RAG: RAGConfig{
			Provider:      "huggingface",
			Collection:    "press_news",
			Query:         "Short selling",
			TopK:          5,
			DefaultSymbol: "AAPL", // Demo fallback when the analysis yields no issuer
		},
		Gemini: GeminiConfig{
			Model:          "gemini-3-flash-preview",
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
			Timeout:        "2m",
		},
		Claude: ClaudeConfig{
			Model:     "claude-haiku-3-5-20241022",
			MaxTokens: 1024,
		},
		Storage: StorageConfig{
			Persist: false,
			Badger: BadgerConfig{
				Path: "./data/articles",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Watch: WatchConfig{
			Enabled:  false,
			Schedule: "0 9 * * 1-5",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 ->
// file2 -> ... -> secrets document -> environment variables.
// Later files override earlier files.
func LoadFromFiles(secretsPath string, paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	if secretsPath != "" {
		if err := applySecrets(config, secretsPath); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applySecrets merges credentials from a YAML secrets document into the config
func applySecrets(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read secrets file %s: %w", path, err)
	}

	var secrets secretsDocument
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("failed to parse secrets file %s: %w", path, err)
	}

	if secrets.NewsAPIKey != "" {
		config.News.APIKey = secrets.NewsAPIKey
	}
	if secrets.HuggingFaceUserToken != "" {
		config.RAG.HFToken = secrets.HuggingFaceUserToken
	}
	if secrets.GeminiAPIKey != "" {
		config.Gemini.APIKey = secrets.GeminiAPIKey
	}
	if secrets.AnthropicAPIKey != "" {
		config.Claude.APIKey = secrets.AnthropicAPIKey
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SHORTWATCH_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if url := os.Getenv("SHORTWATCH_CONSOB_URL"); url != "" {
		config.Consob.URL = url
	}
	if destDir := os.Getenv("SHORTWATCH_CONSOB_DEST_DIR"); destDir != "" {
		config.Consob.DestDir = destDir
	}

	if endpoint := os.Getenv("SHORTWATCH_NEWS_ENDPOINT"); endpoint != "" {
		config.News.Endpoint = endpoint
	}
	if apiKey := os.Getenv("SHORTWATCH_NEWS_API_KEY"); apiKey != "" {
		config.News.APIKey = apiKey
	}

	if provider := os.Getenv("SHORTWATCH_RAG_PROVIDER"); provider != "" {
		config.RAG.Provider = provider
	}
	if endpoint := os.Getenv("SHORTWATCH_HF_INFERENCE_ENDPOINT"); endpoint != "" {
		config.RAG.InferenceEndpoint = endpoint
	}
	if token := os.Getenv("SHORTWATCH_HF_TOKEN"); token != "" {
		config.RAG.HFToken = token
	}
	if symbol := os.Getenv("SHORTWATCH_RAG_DEFAULT_SYMBOL"); symbol != "" {
		config.RAG.DefaultSymbol = symbol
	}

	if apiKey := os.Getenv("SHORTWATCH_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("SHORTWATCH_GEMINI_EMBED_MODEL"); model != "" {
		config.Gemini.EmbedModel = model
	}
	if dim := os.Getenv("SHORTWATCH_GEMINI_EMBED_DIMENSION"); dim != "" {
		if d, err := strconv.Atoi(dim); err == nil {
			config.Gemini.EmbedDimension = d
		}
	}

	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("SHORTWATCH_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // SHORTWATCH_ prefix takes priority
	}

	if persist := os.Getenv("SHORTWATCH_STORAGE_PERSIST"); persist != "" {
		if p, err := strconv.ParseBool(persist); err == nil {
			config.Storage.Persist = p
		}
	}
	if badgerPath := os.Getenv("SHORTWATCH_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("SHORTWATCH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if schedule := os.Getenv("SHORTWATCH_WATCH_SCHEDULE"); schedule != "" {
		config.Watch.Schedule = schedule
	}
}

// Validate checks the configuration for completeness before any component
// runs. Every required field is verified up front so a missing credential
// fails at startup with a descriptive error, not at first dereference.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.RAG.Provider {
	case "huggingface":
		if c.RAG.InferenceEndpoint == "" {
			return fmt.Errorf("rag.inference_endpoint is required when rag.provider is \"huggingface\"")
		}
		if c.RAG.HFToken == "" {
			return fmt.Errorf("rag.hf_token is required when rag.provider is \"huggingface\"")
		}
	case "claude":
		if c.Claude.APIKey == "" {
			return fmt.Errorf("claude.api_key is required when rag.provider is \"claude\"")
		}
	}

	if c.Gemini.EmbedDimension <= 0 {
		return fmt.Errorf("gemini.embed_dimension must be greater than 0, got %d", c.Gemini.EmbedDimension)
	}

	if c.Watch.Enabled {
		if err := ValidateSchedule(c.Watch.Schedule); err != nil {
			return fmt.Errorf("invalid watch.schedule: %w", err)
		}
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"consob.request_timeout", c.Consob.RequestTimeout},
		{"news.request_timeout", c.News.RequestTimeout},
		{"gemini.timeout", c.Gemini.Timeout},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.ParseDuration(field.value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", field.name, field.value, err)
		}
	}

	return nil
}

// DurationOr parses a duration string, falling back to def when the value is
// empty or malformed.
func DurationOr(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
