// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/rotaflex/rotaflex/internal/auth"
	authpg "github.com/rotaflex/rotaflex/internal/auth/postgres"
	"github.com/rotaflex/rotaflex/internal/store"
)

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with the fixed role set",
		Long: `Creates the ADMIN and ADMINISTRATIVO roles if they do not exist.
This command is idempotent - it will not create duplicates if run multiple times.`,
		RunE: runSeed,
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultCommandTimeout)
	defer cancel()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := seedRoles(ctx, pool); err != nil {
		return err
	}
	cmd.Println("Roles seeded")
	return nil
}

// seedRoles ensures every role in the fixed set exists. Safe to run on
// every startup.
func seedRoles(ctx context.Context, pool *pgxpool.Pool) error {
	roles := authpg.NewRoleRepository(pool)
	for _, rt := range auth.RoleTypes() {
		if err := roles.Ensure(ctx, &auth.Role{ID: rt.ID(), Name: rt.Name()}); err != nil {
			return err
		}
	}
	return nil
}
