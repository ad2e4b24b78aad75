package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/CloudNativeWorks/datalayer-license/internal/config"
	"github.com/CloudNativeWorks/datalayer-license/internal/controlplane"
	"github.com/CloudNativeWorks/datalayer-license/internal/logger"
	"github.com/CloudNativeWorks/datalayer-license/internal/metrics"
	"github.com/CloudNativeWorks/datalayer-license/internal/upstream"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "license-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "license-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := cfg.Upstream.Validate(); err != nil {
		logg.Error(context.Background(), "invalid upstream config", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	provider := upstream.NewLemonSqueezy(cfg.Upstream.APIKey,
		upstream.WithBaseURL(cfg.Upstream.URL),
		upstream.WithTimeout(cfg.Upstream.Timeout),
	)
	handler := controlplane.NewHandler(provider, controlplane.ProductMap(cfg.Products.Map),
		controlplane.WithLogger(logg),
		controlplane.WithMetrics(metrics.NewLicenseMetrics(reg)),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"products": len(cfg.Products.Map),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           controlplane.NewRouter(handler, logg, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting license api")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "license api stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
