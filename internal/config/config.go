// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

// Package config loads service configuration from YAML files and command
// line flags. Flags take precedence over file values, which take precedence
// over defaults.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/rotaflex/rotaflex/internal/auth"
)

// JWT holds session token signing parameters.
type JWT struct {
	Secret string        `koanf:"secret"`
	Issuer string        `koanf:"issuer"`
	TTL    time.Duration `koanf:"ttl"`
}

// Config is the root service configuration.
type Config struct {
	DatabaseURL string `koanf:"database_url"`
	LogFormat   string `koanf:"log_format"`
	MetricsAddr string `koanf:"metrics_addr"`
	BcryptCost  int    `koanf:"bcrypt_cost"`
	JWT         JWT    `koanf:"jwt"`
}

// Default returns the configuration defaults applied before any file or
// flag values are loaded.
func Default() Config {
	return Config{
		LogFormat:   "json",
		MetricsAddr: ":9090",
		BcryptCost:  auth.DefaultBcryptCost,
		JWT: JWT{
			Issuer: "rotaflex",
			TTL:    auth.DefaultTokenTTL,
		},
	}
}

// Load builds a Config from an optional YAML file and an optional flag set.
// Either may be empty/nil. The result is validated before being returned.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").With("path", path).Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable. The JWT secret is only
// required by commands that issue tokens; those call ValidateSecret as well.
func (c Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be json or text")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return oops.Code("CONFIG_INVALID").
			With("bcrypt_cost", c.BcryptCost).
			Errorf("bcrypt_cost must be between 4 and 31")
	}
	if c.JWT.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("jwt.ttl must be positive")
	}
	return nil
}

// ValidateSecret checks the parts of the configuration that only matter when
// the process signs or verifies session tokens.
func (c Config) ValidateSecret() error {
	if c.JWT.Secret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("jwt.secret is required")
	}
	return nil
}

// ValidateDatabase checks the parts of the configuration that only matter
// when the process talks to PostgreSQL.
func (c Config) ValidateDatabase() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required")
	}
	return nil
}
