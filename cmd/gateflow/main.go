package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/couchcryptid/gate-ops-etl/internal/adapter/csvsource"
	httpadapter "github.com/couchcryptid/gate-ops-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/gate-ops-etl/internal/adapter/kafka"
	"github.com/couchcryptid/gate-ops-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/gate-ops-etl/internal/config"
	"github.com/couchcryptid/gate-ops-etl/internal/observability"
	"github.com/couchcryptid/gate-ops-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	source := csvsource.New(cfg.DataDir, logger)

	var sinks []pipeline.SeriesSink
	var closers []func() error
	for _, name := range cfg.Sinks {
		switch name {
		case config.SinkSQLite:
			store, err := sqlite.NewStore(cfg.SQLitePath, logger)
			if err != nil {
				logger.Error("failed to open sqlite store", "path", cfg.SQLitePath, "error", err)
				os.Exit(1)
			}
			sinks = append(sinks, store)
			closers = append(closers, store.Close)
		case config.SinkKafka:
			writer := kafkaadapter.NewWriter(cfg, logger)
			sinks = append(sinks, writer)
			closers = append(closers, writer.Close)
		}
	}

	transformer := pipeline.NewTransformer(logger, metrics)
	p := pipeline.New(source, transformer, sinks, cfg.Reservoirs, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	exitCode := 0
	if cfg.ResyncSchedule == "" {
		// One-shot mode: process every reservoir once and exit.
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
			exitCode = 1
		}
		stop()
	} else {
		// Scheduled mode: run immediately, then reprocess on the cron
		// schedule until a signal arrives.
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}

		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.ResyncSchedule, func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("scheduled pipeline error", "error", err)
			}
		})
		if err != nil {
			logger.Error("invalid resync schedule", "schedule", cfg.ResyncSchedule, "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		logger.Info("resync scheduler started", "schedule", cfg.ResyncSchedule)

		<-ctx.Done()
		<-scheduler.Stop().Done()
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	os.Exit(exitCode)
}
