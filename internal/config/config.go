// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath     = "config.toml"
	DefaultHTTPAddr       = ":8080"
	DefaultJWTExpiresIn   = "24h"
	DefaultArangoURL      = "http://127.0.0.1:8529"
	DefaultArangoUser     = "root"
	DefaultArangoDatabase = "bimoi"
	DefaultSessionBackend = "memory"
	DefaultRedisAddr      = "127.0.0.1:6379"
	DefaultRedisKeyPrefix = "bimoi:session:"
	DefaultPhoneRegion    = ""
	DefaultFlowPath       = ""
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Arango   ArangoConfig   `toml:"arangodb"`
	Session  SessionConfig  `toml:"session"`
	Telegram TelegramConfig `toml:"telegram"`
	Phone    PhoneConfig    `toml:"phone"`
	Flow     FlowConfig     `toml:"flow"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AuthConfig holds the REST API key, JWT secret, and token expiry (e.g. 24h).
type AuthConfig struct {
	APIKey       string `toml:"api_key"`
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

// ArangoConfig holds ArangoDB connection parameters.
type ArangoConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// SessionConfig selects the conversation session backend ("memory" or "redis").
type SessionConfig struct {
	Backend   string `toml:"backend"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	KeyPrefix string `toml:"key_prefix"`
}

// TelegramConfig holds the bot token, webhook URL, and webhook secret token.
type TelegramConfig struct {
	BotToken      string `toml:"bot_token"`
	WebhookURL    string `toml:"webhook_url"`
	WebhookSecret string `toml:"webhook_secret"`
}

// PhoneConfig holds the default region for numbers without a country code (e.g. "US").
type PhoneConfig struct {
	DefaultRegion string `toml:"default_region"`
}

// FlowConfig holds an optional path to a flow YAML overriding the embedded default.
type FlowConfig struct {
	Path string `toml:"path"`
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Arango: ArangoConfig{
			URL:      DefaultArangoURL,
			Username: DefaultArangoUser,
			Database: DefaultArangoDatabase,
		},
		Session: SessionConfig{
			Backend:   DefaultSessionBackend,
			RedisAddr: DefaultRedisAddr,
			KeyPrefix: DefaultRedisKeyPrefix,
		},
		Phone: PhoneConfig{
			DefaultRegion: DefaultPhoneRegion,
		},
		Flow: FlowConfig{
			Path: DefaultFlowPath,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
