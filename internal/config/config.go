// Package config resolves server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the server reads from the environment.
// Command line flags in cmd/server may override the address fields.
type Config struct {
	Host    string `env:"FINNACLE_HOST" envDefault:"0.0.0.0"`
	Port    int    `env:"FINNACLE_PORT" envDefault:"8080"`
	DataDir string `env:"FINNACLE_DATA_DIR"`
	DBPath  string `env:"FINNACLE_DB_PATH"`
	WebDir  string `env:"FINNACLE_WEB_DIR"`

	JWTSecret string        `env:"FINNACLE_JWT_SECRET"`
	TokenTTL  time.Duration `env:"FINNACLE_TOKEN_TTL" envDefault:"24h"`

	QuoteBaseURL string        `env:"FINNACLE_QUOTE_BASE_URL"`
	QuoteTimeout time.Duration `env:"FINNACLE_QUOTE_TIMEOUT" envDefault:"10s"`

	AIProvider   string `env:"FINNACLE_AI_PROVIDER"`
	AIBaseURL    string `env:"FINNACLE_AI_BASE_URL"`
	AIAPIKey     string `env:"FINNACLE_AI_API_KEY"`
	AIModel      string `env:"FINNACLE_AI_MODEL"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"FINNACLE_GEMINI_MODEL"`
}

// Load parses the environment and fills in derived paths.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the host:port pair the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogDir returns the directory daily log files are written to.
func (c *Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

func (c *Config) resolvePaths() error {
	if c.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
		c.DataDir = filepath.Join(base, "finnacle")
	}
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "finnacle.db")
	}
	return nil
}
