package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Theme      ThemeConfig
	Playground PlaygroundConfig
	Sandbox    SandboxConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8700"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// ThemeConfig holds theme store configuration.
type ThemeConfig struct {
	PrefsPath string `envconfig:"THEME_PREFS_PATH" default:""`
}

// PlaygroundConfig holds playground session configuration.
type PlaygroundConfig struct {
	ArenaPrefix string `envconfig:"PLAYGROUND_ARENA_PREFIX" default:"dexbee-playground"`
	MaxSessions int    `envconfig:"PLAYGROUND_MAX_SESSIONS" default:"256"`
}

// SandboxConfig holds sandboxed execution configuration.
type SandboxConfig struct {
	// Timeout bounds a single execution; 0 disables the interrupt timer.
	Timeout time.Duration `envconfig:"SANDBOX_TIMEOUT" default:"5s"`
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
			Port: "8700",
			Host: "0.0.0.0",
		},
		Playground: PlaygroundConfig{
			ArenaPrefix: "dexbee-playground",
			MaxSessions: 256,
		},
		Sandbox: SandboxConfig{
			Timeout: 5 * time.Second,
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
