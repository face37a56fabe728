package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all process configuration.
type Config struct {
	Server    ServerConfig
	Reader    ReaderConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// ReaderConfig locates the document library and persisted reader settings.
type ReaderConfig struct {
	Root          string        `envconfig:"READER_ROOT" default:"."`
	Settings      string        `envconfig:"READER_SETTINGS" default:"htmlreader.json"`
	Watch         bool          `envconfig:"READER_WATCH" default:"true"`
	Remote        bool          `envconfig:"READER_REMOTE" default:"false"`
	MaxDocument   int64         `envconfig:"READER_MAX_DOCUMENT" default:"67108864"`
	FetchTimeout  time.Duration `envconfig:"READER_FETCH_TIMEOUT" default:"30s"`
	WatchDebounce time.Duration `envconfig:"READER_WATCH_DEBOUNCE" default:"250ms"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "127.0.0.1",
		},
		Reader: ReaderConfig{
			Root:          ".",
			Settings:      "htmlreader.json",
			Watch:         true,
			Remote:        false,
			MaxDocument:   64 << 20,
			FetchTimeout:  30 * time.Second,
			WatchDebounce: 250 * time.Millisecond,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
