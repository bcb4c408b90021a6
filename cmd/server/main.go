// Package main is the entry point for the folio portfolio analytics server.
// It serves a JSON and PNG chart API over a normalized holdings snapshot,
// with market data pulled from Yahoo Finance through a persistent cache.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nlagos/folio/internal/config"
	"github.com/nlagos/folio/internal/di"
	"github.com/nlagos/folio/internal/scheduler"
	"github.com/nlagos/folio/internal/server"
	"github.com/nlagos/folio/pkg/logger"
)

func main() {
	// Load configuration first to get the log level.
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	log.Info().Msg("Starting folio")

	// Wire all dependencies: cache database, market-data client, services.
	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// Background jobs: price refresh and cache cleanup.
	sched := scheduler.New(log)
	if cfg.JobsEnabled {
		if err := sched.AddJob(cfg.RefreshSchedule, container.RefreshJob); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Failed to register refresh job")
		}
		if err := sched.AddJob(cfg.CleanupSchedule, container.CleanupJob); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.CleanupSchedule).Msg("Failed to register cleanup job")
		}
		sched.Start()
	} else {
		log.Info().Msg("Background jobs disabled")
	}

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if cfg.JobsEnabled {
		sched.Stop()
	}

	// In-flight requests get up to 10 seconds to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
