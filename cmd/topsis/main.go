package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeSquared-Agency/Topsis/internal/api"
	"github.com/MikeSquared-Agency/Topsis/internal/config"
	"github.com/MikeSquared-Agency/Topsis/internal/events"
	"github.com/MikeSquared-Agency/Topsis/internal/mailer"
	"github.com/MikeSquared-Agency/Topsis/internal/metrics"
	"github.com/MikeSquared-Agency/Topsis/internal/results"
	"github.com/MikeSquared-Agency/Topsis/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rs, err := results.New(cfg.Storage.UploadDir, cfg.Storage.ResultsDir)
	if err != nil {
		logger.Error("failed to prepare storage", "error", err)
		os.Exit(1)
	}

	if cfg.Retention() > 0 && cfg.SweepInterval() > 0 {
		janitor := results.NewJanitor(rs, cfg.Retention(), cfg.SweepInterval(), logger)
		janitor.Start(ctx)
		defer janitor.Stop()
		logger.Info("file retention enabled", "retention", cfg.Retention(), "interval", cfg.SweepInterval())
	}

	if missing := api.MissingWasmBundle(cfg.Server.StaticDir); len(missing) > 0 {
		logger.Warn("browser form controller unavailable, run go generate ./internal/api or set static_dir",
			"missing", missing, "static_dir", cfg.Server.StaticDir)
	}

	deps := api.Deps{
		Config:  cfg,
		Results: rs,
		Metrics: metrics.New(prometheus.DefaultRegisterer),
		Logger:  logger,
	}

	// Database (optional)
	if cfg.Database.URL != "" {
		db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Warn("failed to connect to database, running without run history", "error", err)
		} else {
			deps.Store = db
			defer db.Close()
			logger.Info("connected to database")
		}
	}

	// Events (optional)
	if cfg.Events.URL != "" {
		nc, err := events.NewNATSClient(ctx, cfg.Events.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			deps.Events = nc
			defer nc.Close()
			logger.Info("connected to nats")
		}
	}

	// Mail
	if cfg.MailConfigured() {
		deps.Mailer = mailer.NewSMTPMailer(cfg.Mail, logger)
		logger.Info("email delivery enabled", "host", cfg.Mail.Host, "port", cfg.Mail.Port)
	} else {
		logger.Warn("SENDER_EMAIL/SENDER_PASSWORD not set, results will not be emailed")
	}

	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
