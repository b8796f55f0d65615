package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pesaflow/pesaflow/internal/config"
	"github.com/pesaflow/pesaflow/internal/infra"
	"github.com/pesaflow/pesaflow/internal/ledger"
	"github.com/pesaflow/pesaflow/internal/logging"
	"github.com/pesaflow/pesaflow/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		if !cfg.IsDev() {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		logger.Warn("postgres unavailable, using in-memory repositories", "error", err)
		db = nil
	}
	if db != nil {
		defer db.Close()
	}

	cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		if !cfg.IsDev() {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		logger.Warn("redis unavailable, idempotency cache disabled", "error", err)
		cache = nil
	}
	if cache != nil {
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	engine, engineClose, err := infra.NewLedgerEngine(cfg)
	if err != nil {
		if !cfg.IsDev() {
			logger.Error("connect ledger engine", "error", err)
			os.Exit(1)
		}
		logger.Warn("ledger engine unavailable, using in-memory engine", "error", err)
		engine = nil
	}
	if engineClose != nil {
		defer engineClose()
	}

	if engine != nil {
		ledgerClient := ledger.NewClient(engine)
		err := ledger.EnsureSystemAccountsWithRetry(ctx, ledgerClient,
			cfg.BootstrapAttempts, cfg.BootstrapDelay, logger)
		if err != nil {
			logger.Error("bootstrap system accounts", "error", err)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, db, cache, engine, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
