package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JonMunkholm/liquefy/internal/config"
	"github.com/JonMunkholm/liquefy/internal/core"
	"github.com/JonMunkholm/liquefy/internal/logging"
	"github.com/JonMunkholm/liquefy/internal/storage"
	"github.com/JonMunkholm/liquefy/internal/web"
)

func main() {
	// A missing .env is normal in containers.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	if envErr != nil {
		logger.Debug("no .env file loaded", "error", envErr)
	}
	logger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to open result store", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	service := core.NewService(store, core.Options{
		Import:      cfg.Import,
		Calculation: cfg.Calculation,
		Metrics:     core.NewMetrics(reg),
	})
	server := web.NewServer(service, cfg, reg)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if active := service.Limiter().ActiveCount(); active > 0 {
			logger.Info("waiting for imports to finish", "active", active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				logger.Warn("imports did not finish in time", "error", err)
			}
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-stopped
	logger.Info("server stopped")
}
