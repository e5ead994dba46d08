package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"otrs-connector/internal/config"
	"otrs-connector/internal/connector"
	"otrs-connector/internal/observability"
	"otrs-connector/internal/otrs"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the connector configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()
	client := otrs.NewClient(cfg.Connection(), cfg.ClientOptions(), logger.Named("otrs"))
	conn := connector.New(client, cfg.SearchFilter(), cfg.MaxTickets(), metrics, logger.Named("connector"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Periodic poller
	go conn.Run(ctx, cfg.PollInterval)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("connector running",
			zap.String("listen_addr", cfg.ListenAddr),
			zap.String("device_url", cfg.DeviceURL),
			zap.String("service", cfg.ServiceName),
			zap.Duration("poll_interval", cfg.PollInterval),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown", zap.Error(err))
	}
}
