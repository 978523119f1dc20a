package finnacle

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// AIOptions configures the LLM-backed endpoints.
type AIOptions struct {
	// Provider selects the finance-chat backend: "openai" (default,
	// also covers any OpenAI-compatible server such as Ollama via
	// BaseURL), "anthropic" or "gemini".
	Provider string
	BaseURL  string
	APIKey   string
	Model    string

	// GeminiAPIKey and GeminiModel drive the insights endpoint.
	GeminiAPIKey string
	GeminiModel  string
}

// Options controls Core initialization.
type Options struct {
	DBPath    string
	Logger    *slog.Logger
	JWTSecret string
	TokenTTL  time.Duration

	QuoteBaseURL  string
	QuoteTimeout  time.Duration
	QuoteCacheTTL time.Duration
	QuoteCooldown time.Duration
	QuoteClient   HTTPDoer

	AI AIOptions
}

// Core provides access to Finnacle business logic and storage.
type Core struct {
	db        *sql.DB
	logger    *slog.Logger
	quotes    *quoteFetcher
	ai        AIOptions
	jwtSecret []byte
	tokenTTL  time.Duration
	dbPath    string
}

// Open initializes a Core using the provided database path and JWT secret.
func Open(dbPath, jwtSecret string) (*Core, error) {
	return OpenWithOptions(Options{DBPath: dbPath, JWTSecret: jwtSecret})
}

// OpenWithOptions initializes a Core using the provided options.
func OpenWithOptions(opts Options) (*Core, error) {
	if opts.DBPath == "" {
		return nil, errors.New("db path is required")
	}
	if opts.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	cleanPath := filepath.Clean(opts.DBPath)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite performs best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Warn("pragma busy_timeout failed", "err", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logger.Warn("pragma foreign_keys failed", "err", err)
	}

	if err := initDatabase(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}

	quotes := newQuoteFetcher(quoteFetcherOptions{
		Logger:   logger,
		BaseURL:  opts.QuoteBaseURL,
		CacheTTL: defaultDuration(opts.QuoteCacheTTL, 30*time.Second),
		Cooldown: defaultDuration(opts.QuoteCooldown, 60*time.Second),
		Timeout:  defaultDuration(opts.QuoteTimeout, 10*time.Second),
		Client:   opts.QuoteClient,
	})

	return &Core{
		db:        db,
		logger:    logger,
		quotes:    quotes,
		ai:        opts.AI,
		jwtSecret: []byte(opts.JWTSecret),
		tokenTTL:  defaultDuration(opts.TokenTTL, 24*time.Hour),
		dbPath:    cleanPath,
	}, nil
}

// Close releases database resources.
func (c *Core) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DBPath returns the underlying database path.
func (c *Core) DBPath() string {
	return c.dbPath
}

func defaultDuration(v, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}
