// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads and validates application configuration from
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"your-secret-key-change-in-production",
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"COWRY_DB_PATH" envDefault:"./data/cowry.db"`
	AuthSecret string `env:"COWRY_AUTH_SECRET,required"`
	ServerHost string `env:"COWRY_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"COWRY_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"COWRY_ENV" envDefault:"development"`
	LogLevel   string `env:"COWRY_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"COWRY_UPLOADS_DIR" envDefault:"./uploads"`

	// Optional operator account, provisioned at startup when both
	// email and password are set. An existing account is left alone.
	AdminEmail    string `env:"COWRY_ADMIN_EMAIL"`
	AdminPassword string `env:"COWRY_ADMIN_PASSWORD"`
	AdminName     string `env:"COWRY_ADMIN_NAME" envDefault:"Administrator"`

	// Demo mode seeds sample posts on startup.
	DemoMode bool `env:"COWRY_DEMO_MODE" envDefault:"false"`

	// SchedulerEnabled turns on the background job that publishes
	// scheduled posts when their time arrives.
	SchedulerEnabled bool `env:"COWRY_SCHEDULER_ENABLED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MinAuthSecretLength is the minimum required length for the token
// signing secret.
const MinAuthSecretLength = 32

// Load parses environment variables and returns a Config struct.
//
// A missing, short, or known-default COWRY_AUTH_SECRET is a hard
// error: the server must not start with a guessable signing key.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.AuthSecret) < MinAuthSecretLength {
		return nil, fmt.Errorf("COWRY_AUTH_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinAuthSecretLength, len(cfg.AuthSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.AuthSecret == weak {
			return nil, fmt.Errorf("COWRY_AUTH_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.AuthSecret) {
		slog.Warn("COWRY_AUTH_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
