// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the agentdeck
// panel.
//
// Configuration is loaded from a single file specified by either the
// AGENTDECK_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks and no automatic file
// search; a panel pointed at the wrong backend should fail loudly, not
// silently use a discovered config.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable [Load] reads the config path
// from.
const EnvVar = "AGENTDECK_CONFIG"

// Config is the panel configuration.
type Config struct {
	// Server configures the orchestrator backend connection.
	Server ServerConfig `yaml:"server"`

	// Log configures panel logging.
	Log LogConfig `yaml:"log"`
}

// ServerConfig configures the backend connection.
type ServerConfig struct {
	// URL is the http(s) origin of the orchestrator backend. The
	// live stream endpoint is derived from it (wss iff https).
	URL string `yaml:"url"`

	// TokenFile is an optional path to a file holding the bearer
	// token for the backend. Empty means unauthenticated.
	TokenFile string `yaml:"token_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string `yaml:"level"`

	// File is the log destination. Empty means stderr. The TUI
	// redirects logs to a file so slog output does not tear the
	// rendered screen.
	File string `yaml:"file"`
}

// Default returns a Config with development defaults: a local backend
// and info-level logging to stderr.
func Default() *Config {
	return &Config{
		Server: ServerConfig{URL: "http://localhost:8080"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads the config from the file named by the AGENTDECK_CONFIG
// environment variable. An unset variable yields [Default].
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates the config at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config for structural problems.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	parsed, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("server.url %q: %w", c.Server.URL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("server.url %q must be http or https", c.Server.URL)
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be debug, info, warn, or error", c.Log.Level)
	}
	return nil
}

// Token reads the bearer token from Server.TokenFile. Returns the
// empty string when no token file is configured.
func (c *Config) Token() (string, error) {
	if c.Server.TokenFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.Server.TokenFile)
	if err != nil {
		return "", fmt.Errorf("config: reading token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
