// Command ingestd runs the link ingestion service: the worker pool that
// drains the job queue plus the HTTP trigger API.
//
// Configuration comes from the environment (DB_*, INGEST_*); see the config
// package for the full list.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ingest "github.com/jovie-dev/ingest"
	"github.com/jovie-dev/ingest/api"
	"github.com/jovie-dev/ingest/config"
	"github.com/jovie-dev/ingest/fetch"
	"github.com/jovie-dev/ingest/migrations"
	"github.com/jovie-dev/ingest/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("ingestd failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Service.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.InitDB(store.DBConfig{
		Type:     cfg.Database.Type,
		Hostname: cfg.Database.Hostname,
		Port:     cfg.Database.Port,
		Name:     cfg.Database.Name,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
	}, logger)
	if err != nil {
		return err
	}

	s := store.NewStore(db, logger)
	defer s.Close()

	if cfg.Database.Type == "pgsql" {
		if err := migrations.MigrateStore(db); err != nil {
			return err
		}
	} else if err := s.InitialMigration(); err != nil {
		return err
	}

	cache, err := fetch.NewCache(cfg.Service.CacheTTL)
	if err != nil {
		logger.Warn("cache unavailable, fetching without one", "error", err)
	}

	var cacher fetch.Cacher
	if cache != nil {
		cacher = cache
	}
	strategies := ingest.BuildStrategies(ctx, cacher, logger)

	o := ingest.New(s,
		ingest.WithLogger(logger),
		ingest.WithStrategies(strategies),
		ingest.WithPollInterval(cfg.Service.PollInterval),
		ingest.WithSweep(cfg.Service.SweepInterval, cfg.Service.StaleAfter),
		ingest.WithJobTimeout(cfg.Service.JobTimeout),
	)

	srv := &http.Server{
		Addr:              cfg.Service.Address,
		Handler:           api.New(s, o, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "address", cfg.Service.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go o.Run(ctx, cfg.Service.Workers)

	select {
	case err := <-errCh:
		stop()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
