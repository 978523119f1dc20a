package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"finnacle/internal/api"
	"finnacle/internal/config"
	"finnacle/internal/logging"
	"finnacle/pkg/finnacle"
)

func main() {
	var dataDir string
	var port int
	var host string
	var webDir string

	flag.StringVar(&dataDir, "data-dir", "", "Directory for the database, logs and application data")
	flag.IntVar(&port, "port", 0, "Port to run the server on (overrides FINNACLE_PORT)")
	flag.StringVar(&host, "host", "", "Host to bind the server to (overrides FINNACLE_HOST)")
	flag.StringVar(&webDir, "web-dir", "", "Directory for SPA static files (optional)")
	flag.Parse()

	if dataDir != "" {
		os.Setenv("FINNACLE_DATA_DIR", dataDir)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if host != "" {
		cfg.Host = host
	}
	if port != 0 {
		cfg.Port = port
	}
	if webDir != "" {
		cfg.WebDir = webDir
	}

	logger, writer, err := logging.NewLogger(cfg.LogDir())
	if err != nil {
		slog.Error("failed to initialize logger", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to close log writer", "err", err)
		}
	}()

	if cfg.JWTSecret == "" {
		logger.Error("FINNACLE_JWT_SECRET must be set")
		os.Exit(1)
	}

	core, err := finnacle.OpenWithOptions(finnacle.Options{
		DBPath:       cfg.DBPath,
		Logger:       logger,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		QuoteBaseURL: cfg.QuoteBaseURL,
		QuoteTimeout: cfg.QuoteTimeout,
		AI: finnacle.AIOptions{
			Provider:     cfg.AIProvider,
			BaseURL:      cfg.AIBaseURL,
			APIKey:       cfg.AIAPIKey,
			Model:        cfg.AIModel,
			GeminiAPIKey: cfg.GeminiAPIKey,
			GeminiModel:  cfg.GeminiModel,
		},
	})
	if err != nil {
		logger.Error("failed to initialize core", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := core.Close(); err != nil {
			logger.Error("failed to close core", "err", err)
		}
	}()

	handler := api.NewRouter(core, logger)
	if webDir := resolveWebDir(cfg.WebDir); webDir != "" {
		logger.Info("serving SPA", "web_dir", webDir)
		handler = api.WithSPA(handler, webDir)
	}
	handler = middleware.Compress(5)(handler)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("server starting", "addr", cfg.Addr(), "db_path", cfg.DBPath)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
}

func resolveWebDir(input string) string {
	if input != "" {
		if dirExists(input) {
			return input
		}
		return ""
	}

	candidates := []string{"static", "../static"}
	for _, candidate := range candidates {
		if dirExists(candidate) {
			return candidate
		}
	}
	if exe, err := os.Executable(); err == nil {
		base := filepath.Dir(exe)
		for _, candidate := range candidates {
			path := filepath.Join(base, candidate)
			if dirExists(path) {
				return path
			}
		}
	}
	return ""
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
