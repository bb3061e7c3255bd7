package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != DefaultHTTPAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultHTTPAddr)
	}
	if cfg.Arango.Database != DefaultArangoDatabase {
		t.Errorf("Arango.Database = %q, want %q", cfg.Arango.Database, DefaultArangoDatabase)
	}
	if cfg.Session.Backend != DefaultSessionBackend {
		t.Errorf("Session.Backend = %q, want %q", cfg.Session.Backend, DefaultSessionBackend)
	}
}

func TestLoadOverridesAndKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[log]
level = "debug"

[server]
addr = ":9090"

[telegram]
bot_token = "123:abc"

[phone]
default_region = "IT"

[session]
backend = "redis"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Telegram.BotToken != "123:abc" {
		t.Errorf("Telegram.BotToken = %q", cfg.Telegram.BotToken)
	}
	if cfg.Phone.DefaultRegion != "IT" {
		t.Errorf("Phone.DefaultRegion = %q, want IT", cfg.Phone.DefaultRegion)
	}
	if cfg.Session.Backend != "redis" {
		t.Errorf("Session.Backend = %q, want redis", cfg.Session.Backend)
	}
	// Untouched sections keep defaults.
	if cfg.Arango.URL != DefaultArangoURL {
		t.Errorf("Arango.URL = %q, want default", cfg.Arango.URL)
	}
	if cfg.Session.KeyPrefix != DefaultRedisKeyPrefix {
		t.Errorf("Session.KeyPrefix = %q, want default", cfg.Session.KeyPrefix)
	}
}
