// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rotaflex/rotaflex/internal/auth"
	"github.com/rotaflex/rotaflex/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Rotaflex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotaflex",
		Short: "Rotaflex - user account and authentication service",
		Long: `Rotaflex manages user accounts for the route planning platform:
registration, authentication, profile updates, and password resets.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Flag names mirror koanf config keys so flag values override file
	// values without a translation layer.
	cmd.PersistentFlags().String("database_url", "", "PostgreSQL connection string")
	cmd.PersistentFlags().String("log_format", "json", "log output format (json or text)")
	cmd.PersistentFlags().String("metrics_addr", ":9090", "observability server listen address")
	cmd.PersistentFlags().Int("bcrypt_cost", auth.DefaultBcryptCost, "bcrypt hashing cost")
	cmd.PersistentFlags().String("jwt.secret", "", "session token signing secret")
	cmd.PersistentFlags().String("jwt.issuer", "rotaflex", "session token issuer claim")
	cmd.PersistentFlags().Duration("jwt.ttl", auth.DefaultTokenTTL, "session token lifetime")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewUserCmd())

	return cmd
}

// loadConfig resolves the effective configuration for a subcommand from the
// optional --config file and any persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(configFile, cmd.Flags())
}

// Default timeout for one-shot database commands.
const defaultCommandTimeout = 30 * time.Second
