package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the plain time.Duration value.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Sync      SyncConfig      `yaml:"sync"`
	Importer  ImporterConfig  `yaml:"importer"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    Duration        `yaml:"readTimeout"`
	WriteTimeout   Duration        `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff Duration      `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// PostgresConfig contains DSN and pooling settings for the primary store.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// IndexConfig selects and configures the search index backend.
type IndexConfig struct {
	// Backend is one of "weaviate", "postgres", or "none".
	Backend    string         `yaml:"backend"`
	Dimensions int            `yaml:"dimensions"`
	Weaviate   WeaviateConfig `yaml:"weaviate"`
}

// WeaviateConfig contains connection settings for the Weaviate backend.
type WeaviateConfig struct {
	Host   string `yaml:"host"`
	Scheme string `yaml:"scheme"`
	APIKey string `yaml:"apiKey"`
	Class  string `yaml:"class"`
}

// EmbeddingConfig contains OpenAI-compatible embedding API settings.
type EmbeddingConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
}

// SyncConfig controls the search index synchronization behavior.
type SyncConfig struct {
	BatchSize      int          `yaml:"batchSize"`
	Timeout        Duration     `yaml:"timeout"`
	AsyncThreshold int          `yaml:"asyncThreshold"`
	Valkey         ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the async sync queue.
type ValkeyConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	QueueKey string `yaml:"queueKey"`
}

// ImporterConfig controls the spreadsheet bulk import.
type ImporterConfig struct {
	TagSheet     string `yaml:"tagSheet"`
	FAQSheet     string `yaml:"faqSheet"`
	MaxFileBytes int64  `yaml:"maxFileBytes"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("INDEX_BACKEND"); v != "" {
		cfg.Index.Backend = v
	}
	if v := os.Getenv("INDEX_DIMENSIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Index.Dimensions = parsed
		}
	}
	if v := os.Getenv("WEAVIATE_HOST"); v != "" {
		cfg.Index.Weaviate.Host = v
	}
	if v := os.Getenv("WEAVIATE_SCHEME"); v != "" {
		cfg.Index.Weaviate.Scheme = v
	}
	if v := os.Getenv("WEAVIATE_API_KEY"); v != "" {
		cfg.Index.Weaviate.APIKey = v
	}
	if v := os.Getenv("WEAVIATE_CLASS"); v != "" {
		cfg.Index.Weaviate.Class = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("SYNC_BATCH_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Sync.BatchSize = parsed
		}
	}
	if v := os.Getenv("SYNC_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Sync.Timeout = Duration(parsed)
		}
	}
	if v := os.Getenv("SYNC_ASYNC_THRESHOLD"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Sync.AsyncThreshold = parsed
		}
	}
	if v := os.Getenv("SYNC_VALKEY_ENABLED"); v != "" {
		cfg.Sync.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("SYNC_VALKEY_ADDR"); v != "" {
		cfg.Sync.Valkey.Addr = v
	}
	if v := os.Getenv("IMPORTER_TAG_SHEET"); v != "" {
		cfg.Importer.TagSheet = v
	}
	if v := os.Getenv("IMPORTER_FAQ_SHEET"); v != "" {
		cfg.Importer.FAQSheet = v
	}
	if v := os.Getenv("IMPORTER_MAX_FILE_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Importer.MaxFileBytes = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(60 * time.Second),
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     false,
				MaxAttempts: 3,
				BaseBackoff: Duration(150 * time.Millisecond),
				Exclude: []string{
					"/api/excel/upload",
					"/faqs",
					"/tags",
				},
			},
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
			MinConns: 0,
		},
		Index: IndexConfig{
			Backend:    "none",
			Dimensions: 1536,
			Weaviate: WeaviateConfig{
				Scheme: "http",
				Class:  "FaqDocument",
			},
		},
		Embedding: EmbeddingConfig{
			Model: "text-embedding-3-small",
		},
		Sync: SyncConfig{
			BatchSize:      10,
			Timeout:        Duration(30 * time.Second),
			AsyncThreshold: 50,
			Valkey: ValkeyConfig{
				Enabled:  false,
				QueueKey: "faqbase:sync:jobs",
			},
		},
		Importer: ImporterConfig{
			TagSheet:     "tag",
			FAQSheet:     "xreal_tech_faq",
			MaxFileBytes: 16 << 20,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	switch c.Index.Backend {
	case "none", "postgres", "weaviate":
	default:
		return fmt.Errorf("index.backend must be one of none, postgres, weaviate: %q", c.Index.Backend)
	}
	if c.Index.Backend == "weaviate" && strings.TrimSpace(c.Index.Weaviate.Host) == "" {
		return errors.New("index.weaviate.host cannot be empty when the weaviate backend is selected")
	}
	if c.Index.Backend == "postgres" && strings.TrimSpace(c.Postgres.DSN) == "" {
		return errors.New("postgres.dsn cannot be empty when the postgres index backend is selected")
	}
	if c.Index.Dimensions <= 0 {
		return errors.New("index.dimensions must be positive")
	}
	if strings.TrimSpace(c.Embedding.Model) == "" {
		return errors.New("embedding.model cannot be empty")
	}
	if c.Sync.BatchSize <= 0 {
		return errors.New("sync.batchSize must be positive")
	}
	if c.Sync.Timeout <= 0 {
		return errors.New("sync.timeout must be positive")
	}
	if c.Sync.AsyncThreshold < 0 {
		return errors.New("sync.asyncThreshold cannot be negative")
	}
	if c.Sync.Valkey.Enabled && strings.TrimSpace(c.Sync.Valkey.Addr) == "" {
		return errors.New("sync.valkey.addr cannot be empty when the valkey queue is enabled")
	}
	if strings.TrimSpace(c.Importer.TagSheet) == "" {
		return errors.New("importer.tagSheet cannot be empty")
	}
	if strings.TrimSpace(c.Importer.FAQSheet) == "" {
		return errors.New("importer.faqSheet cannot be empty")
	}
	if c.Importer.MaxFileBytes <= 0 {
		return errors.New("importer.maxFileBytes must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
