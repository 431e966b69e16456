// Package cli provides common initialization utilities shared by
// cmd/bdget and cmd/bdget-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/romaric67/bdget-app/internal/backend"
	"github.com/romaric67/bdget-app/internal/config"
	applog "github.com/romaric67/bdget-app/internal/log"
)

// SetupLogger initializes structured logging with default settings and sets
// it as the process default.
func SetupLogger(component string) *applog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return applog.FromSlog(logger, component)
}

// LoadEnvFile loads the .env file for local development. Errors are ignored
// silently; the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting the
// process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend constructs the key-value store named by cfg, exiting the
// process on failure.
func InitBackend(logger *applog.Logger, cfg *config.Config) *backend.Result {
	result, err := backend.New(backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize backend",
			applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return result
}

