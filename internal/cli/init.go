// Package cli provides the start-up steps shared by cmd/charity and
// cmd/donorctl: environment, logging, configuration and the donor backend.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"charity/internal/backend"
	"charity/internal/config"
	"charity/internal/controller"
	"charity/internal/loader"
	"charity/internal/log"
	"charity/internal/site"
	"charity/internal/view"
)

// SetupLogger builds the process logger at level and installs it as the slog default.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads the environment and validates it.
func LoadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// OpenBackend creates the donor backend selected by DATA_BACKEND.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger)
	return factory.CreateBackend(ctx, bcfg)
}

// NewController wires the loader, renderer and site settings into a controller.
// The load itself is left to the caller.
func NewController(cfg *config.Config, src backend.Backend, logger *log.Logger) (*controller.Controller, error) {
	settings, err := site.Load(cfg.SiteConfig)
	if err != nil {
		return nil, err
	}
	return controller.New(controller.Options{
		Loader:            loader.New(src, src, cfg.LoadTimeout, logger),
		Renderer:          view.NewRenderer(view.NewFormatter(cfg.CurrencySymbol, cfg.Locale)),
		Settings:          settings,
		Backend:           cfg.DataBackend,
		SpotlightInterval: cfg.SpotlightInterval,
		SpotlightFade:     cfg.SpotlightFade,
		CounterDuration:   cfg.CounterDuration,
		Logger:            logger,
	}), nil
}

// Cleanup releases the backend, logging instead of failing.
func Cleanup(logger *log.Logger, res *backend.BackendResult) {
	if res == nil || res.Cleanup == nil {
		return
	}
	if err := res.Cleanup(); err != nil {
		logger.Warn("Backend cleanup failed", log.FieldError, err)
	}
}

// GracefulShutdown runs shutdown once SIGINT or SIGTERM arrives, bounded by
// timeout. The returned channel closes when shutdown has finished.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, shutdown func(context.Context)) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		shutdown(ctx)

		if ctx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return done
}
