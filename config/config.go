package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the NewsChat service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Index     IndexConfig     `mapstructure:"index"`
	Session   SessionConfig   `mapstructure:"session"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// EmbeddingConfig configures the Jina embedding gateway.
type EmbeddingConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func (e EmbeddingConfig) Validate() error {
	if strings.TrimSpace(e.APIKey) == "" {
		return fmt.Errorf("embedding.api_key required (NEWSCHAT_EMBEDDING_API_KEY)")
	}
	return nil
}

// LLMConfig configures the Gemini language-model gateway.
type LLMConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("llm.api_key required (NEWSCHAT_LLM_API_KEY)")
	}
	return nil
}

// IndexConfig configures the persistent vector index.
type IndexConfig struct {
	Type string `mapstructure:"type"` // badger
	Path string `mapstructure:"path"`
}

func (i IndexConfig) Validate() error {
	if strings.TrimSpace(i.Path) == "" {
		return fmt.Errorf("index.path required")
	}
	return nil
}

// SessionConfig configures the session store.
type SessionConfig struct {
	Store  string        `mapstructure:"store"` // inmemory or redis
	Expiry time.Duration `mapstructure:"expiry"`
	Redis  RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains connection settings for the redis session store.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func (s SessionConfig) Validate() error {
	switch s.Store {
	case "inmemory":
	case "redis":
		if s.Redis.Host == "" || s.Redis.Port == 0 {
			return fmt.Errorf("session.redis.host/port required when session.store is redis")
		}
	default:
		return fmt.Errorf("unsupported session.store: %s", s.Store)
	}
	if s.Expiry <= 0 {
		return fmt.Errorf("session.expiry must be > 0")
	}
	return nil
}

// RetrievalConfig tunes context retrieval for chat turns.
type RetrievalConfig struct {
	TopK         int    `mapstructure:"top_k"`
	Mode         string `mapstructure:"mode"` // vector or hybrid
	HistoryLimit int    `mapstructure:"history_limit"`
}

func (r RetrievalConfig) Validate() error {
	if r.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be > 0")
	}
	if r.Mode != "vector" && r.Mode != "hybrid" {
		return fmt.Errorf("unsupported retrieval.mode: %s", r.Mode)
	}
	return nil
}

// IngestConfig configures the article ingestion pipeline.
type IngestConfig struct {
	DataPath         string        `mapstructure:"data_path"`
	FeedLimit        int           `mapstructure:"feed_limit"`
	MinContentLength int           `mapstructure:"min_content_length"`
	Fetcher          string        `mapstructure:"fetcher"` // http or chromedp
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
	MaxChars         int           `mapstructure:"max_chars"`
	RefreshCron      string        `mapstructure:"refresh_cron"`
	RefreshFeedURL   string        `mapstructure:"refresh_feed_url"`
}

func (i IngestConfig) Validate() error {
	if strings.TrimSpace(i.DataPath) == "" {
		return fmt.Errorf("ingest.data_path required")
	}
	if i.Fetcher != "http" && i.Fetcher != "chromedp" {
		return fmt.Errorf("unsupported ingest.fetcher: %s", i.Fetcher)
	}
	if i.RefreshCron != "" && strings.TrimSpace(i.RefreshFeedURL) == "" {
		return fmt.Errorf("ingest.refresh_feed_url required when ingest.refresh_cron is set")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	// Keys with no file default still need registering so AutomaticEnv
	// surfaces them through Unmarshal.
	viper.SetDefault("embedding.api_key", "")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("session.redis.host", "")
	viper.SetDefault("session.redis.password", "")
	viper.SetDefault("session.redis.db", 0)
	viper.SetDefault("ingest.refresh_cron", "")
	viper.SetDefault("ingest.refresh_feed_url", "")
	viper.SetDefault("embedding.model", "jina-embeddings-v2-base-en")
	viper.SetDefault("embedding.base_url", "https://api.jina.ai/v1/embeddings")
	viper.SetDefault("embedding.timeout", 30*time.Second)
	viper.SetDefault("llm.model", "gemini-1.5-pro")
	viper.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("llm.timeout", 60*time.Second)
	viper.SetDefault("index.type", "badger")
	viper.SetDefault("index.path", "./newschat_db")
	viper.SetDefault("session.store", "inmemory")
	viper.SetDefault("session.expiry", time.Hour)
	viper.SetDefault("session.redis.port", 6379)
	viper.SetDefault("session.redis.ttl", 24*time.Hour)
	viper.SetDefault("retrieval.top_k", 3)
	viper.SetDefault("retrieval.mode", "vector")
	viper.SetDefault("retrieval.history_limit", 20)
	viper.SetDefault("ingest.data_path", "./data/articles.json")
	viper.SetDefault("ingest.feed_limit", 50)
	viper.SetDefault("ingest.min_content_length", 500)
	viper.SetDefault("ingest.fetcher", "http")
	viper.SetDefault("ingest.fetch_timeout", 10*time.Second)
	viper.SetDefault("ingest.max_chars", 20000)
}

// LoadConfig reads configuration from an optional config file plus NEWSCHAT_*
// environment variables. A missing config file is not an error; missing
// credentials are, and they prevent the service from starting.
func LoadConfig(path string) (*Config, error) {
	setDefaults()

	if path == "" {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("NEWSCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section; any failure is fatal at startup.
func (c *Config) Validate() error {
	if err := c.Embedding.Validate(); err != nil {
		return err
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Retrieval.Validate(); err != nil {
		return err
	}
	return c.Ingest.Validate()
}
