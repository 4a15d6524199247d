package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// LoadConfig works through viper's package-level state, so these tests run
// sequentially and reset it between runs.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("NEWSCHAT_EMBEDDING_API_KEY", "jina-key")
	t.Setenv("NEWSCHAT_LLM_API_KEY", "gemini-key")
}

func TestLoadConfigDefaults(t *testing.T) {
	resetViper(t)
	setCredentials(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("explicit missing config file should fail")
	}

	// Without an explicit path a missing file falls back to defaults.
	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("server.port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("retrieval.top_k = %d, want 3", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.Mode != "vector" {
		t.Errorf("retrieval.mode = %q, want vector", cfg.Retrieval.Mode)
	}
	if cfg.Session.Store != "inmemory" {
		t.Errorf("session.store = %q, want inmemory", cfg.Session.Store)
	}
	if cfg.Session.Expiry != time.Hour {
		t.Errorf("session.expiry = %v, want 1h", cfg.Session.Expiry)
	}
	if cfg.Ingest.DataPath != "./data/articles.json" {
		t.Errorf("ingest.data_path = %q", cfg.Ingest.DataPath)
	}
	if cfg.Ingest.MinContentLength != 500 {
		t.Errorf("ingest.min_content_length = %d, want 500", cfg.Ingest.MinContentLength)
	}
	if cfg.Embedding.APIKey != "jina-key" {
		t.Errorf("embedding.api_key not read from environment")
	}
}

func TestLoadConfigMissingCredentials(t *testing.T) {
	resetViper(t)
	// No API keys in the environment: startup must fail.
	t.Setenv("NEWSCHAT_EMBEDDING_API_KEY", "")
	t.Setenv("NEWSCHAT_LLM_API_KEY", "")

	_, err := LoadConfig("")
	if err == nil {
		t.Fatal("config validated without credentials")
	}
	if !strings.Contains(err.Error(), "api_key") {
		t.Fatalf("error = %v, want api_key failure", err)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	resetViper(t)
	setCredentials(t)
	t.Setenv("NEWSCHAT_SERVER_PORT", "9100")
	t.Setenv("NEWSCHAT_RETRIEVAL_MODE", "hybrid")
	t.Setenv("NEWSCHAT_RETRIEVAL_TOP_K", "5")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("server.port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Retrieval.Mode != "hybrid" {
		t.Errorf("retrieval.mode = %q, want hybrid", cfg.Retrieval.Mode)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("retrieval.top_k = %d, want 5", cfg.Retrieval.TopK)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	resetViper(t)
	setCredentials(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `server:
  port: 9200
session:
  store: redis
  redis:
    host: localhost
retrieval:
  mode: hybrid
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("server.port = %d, want 9200", cfg.Server.Port)
	}
	if cfg.Session.Store != "redis" || cfg.Session.Redis.Host != "localhost" {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Session.Redis.Port != 6379 {
		t.Errorf("redis port default lost: %d", cfg.Session.Redis.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	resetViper(t)
	setCredentials(t)

	cases := map[string]map[string]string{
		"bad retrieval mode": {"NEWSCHAT_RETRIEVAL_MODE": "graph"},
		"bad session store":  {"NEWSCHAT_SESSION_STORE": "memcached"},
		"bad fetcher":        {"NEWSCHAT_INGEST_FETCHER": "curl"},
		"cron without feed":  {"NEWSCHAT_INGEST_REFRESH_CRON": "0 * * * *"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			resetViper(t)
			setCredentials(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(""); err == nil {
				t.Fatalf("%s accepted", name)
			}
		})
	}
}
