package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"charity/internal/cli"
	apphttp "charity/internal/http"
	"charity/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.SetupLogger("info").Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	res, err := cli.OpenBackend(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize donor backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	ctrl, err := cli.NewController(cfg, res.Backend, logger)
	if err != nil {
		logger.Error("Failed to load site settings", log.FieldError, err, "path", cfg.SiteConfig)
		cli.Cleanup(logger, res)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, ctrl, apphttp.Options{
		Logger:            logger,
		RequestsPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:    cfg.TrustedProxies,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Pages render a loading state until the one-shot load finishes.
	loadCtx, cancelLoad := context.WithCancel(context.Background())
	go func() {
		if err := ctrl.Init(loadCtx); err != nil {
			logger.Warn("Donor data unavailable, serving error state", log.FieldError, err)
		}
	}()

	done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		cancelLoad()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		ctrl.Teardown()
		cli.Cleanup(logger, res)
	})

	logger.Info("Starting charity server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		cancelLoad()
		ctrl.Teardown()
		cli.Cleanup(logger, res)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
