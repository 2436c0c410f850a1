// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rotaflex/rotaflex/internal/logging"
	"github.com/rotaflex/rotaflex/internal/observability"
	"github.com/rotaflex/rotaflex/internal/store"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the account service",
		Long: `Connects to PostgreSQL, seeds the fixed role set, and serves
metrics and health endpoints until interrupted.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}
	if err := cfg.ValidateSecret(); err != nil {
		return err
	}

	logging.SetDefault("rotaflex", version, cfg.LogFormat)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	slog.Info("database connected")

	if err := seedRoles(ctx, pool); err != nil {
		return err
	}

	obsServer := observability.NewServer(cfg.MetricsAddr, func() bool {
		pingCtx, pingCancel := context.WithTimeout(ctx, time.Second)
		defer pingCancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErrChan, err := obsServer.Start()
	if err != nil {
		return err
	}
	slog.Info("observability server started", "addr", obsServer.Addr())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
	case err, ok := <-obsErrChan:
		if ok && err != nil {
			slog.Error("observability server failed", "error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := obsServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping observability server", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
