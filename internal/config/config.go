// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragdesk.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ragdesk configuration.
type Config struct {
	Version string `toml:"version"`

	// Server configuration
	Server ServerConfig `toml:"server"`

	// Polling policy for asynchronous chat tasks
	Polling PollingConfig `toml:"polling"`

	// Chat defaults
	Chat ChatConfig `toml:"chat"`

	// Local history
	History HistoryConfig `toml:"history"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains the service endpoint configuration.
type ServerConfig struct {
	// BaseURL is the service address (default: http://localhost:8000)
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// ChatID is the chat channel used in the completions path
	ChatID string `toml:"chat_id"`
	// Model is the model name sent with chat requests
	Model string `toml:"model"`
}

// PollingConfig is the single task-polling policy. Earlier frontends
// disagreed on interval and attempt count; this is the one knob set.
type PollingConfig struct {
	// IntervalSecs is the fixed delay between polls
	IntervalSecs int `toml:"interval_secs"`
	// MaxAttempts bounds polls per task before timing out
	MaxAttempts int `toml:"max_attempts"`
	// ErrorBackoffSecs is the delay after a transport error
	ErrorBackoffSecs int `toml:"error_backoff_secs"`
}

// ChatConfig contains chat defaults.
type ChatConfig struct {
	// DefaultKB is the knowledge base id preselected at startup ("" = none)
	DefaultKB string `toml:"default_kb"`
	// Legacy switches chat to the synchronous /api/chat/send endpoint
	Legacy bool `toml:"legacy"`
}

// HistoryConfig controls local persistence of completed turns.
type HistoryConfig struct {
	// Enabled turns history on (default: true)
	Enabled bool `toml:"enabled"`
	// Path overrides the database location (default: ~/.ragdesk/history.db)
	Path string `toml:"path"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "dark", "light", or "auto"
	Theme string `toml:"theme"`
	// MarkdownWidth is the wrap width for rendered answers
	MarkdownWidth int `toml:"markdown_width"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			BaseURL:     "http://localhost:8000",
			TimeoutSecs: 30,
			ChatID:      "default",
			Model:       "rag-default",
		},
		Polling: PollingConfig{
			IntervalSecs:     2,
			MaxAttempts:      90,
			ErrorBackoffSecs: 2,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		UI: UIConfig{
			Theme:         "auto",
			MarkdownWidth: 80,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns ~/.ragdesk, creating it if needed.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".ragdesk")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// ConfigPath returns the path of the TOML configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// HistoryPath resolves the history database location.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from the default path, applies environment
// overrides, validates, and returns the result. A missing file is not an
// error; defaults are used.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// applyEnv overlays RAGDESK_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("RAGDESK_SERVER_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("RAGDESK_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.TimeoutSecs = n
		}
	}
	if v := os.Getenv("RAGDESK_POLL_INTERVAL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Polling.IntervalSecs = n
		}
	}
	if v := os.Getenv("RAGDESK_POLL_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Polling.MaxAttempts = n
		}
	}
	if v := os.Getenv("RAGDESK_DEFAULT_KB"); v != "" {
		cfg.Chat.DefaultKB = v
	}
	if v := os.Getenv("RAGDESK_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("RAGDESK_HISTORY"); v != "" {
		cfg.History.Enabled = v != "0" && !strings.EqualFold(v, "false")
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration and clamps out-of-range values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.base_url %q is not a valid URL", c.Server.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url scheme must be http or https, got %q", u.Scheme)
	}

	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = 30
	}
	if c.Polling.IntervalSecs <= 0 {
		c.Polling.IntervalSecs = 2
	}
	if c.Polling.MaxAttempts <= 0 {
		c.Polling.MaxAttempts = 90
	}
	if c.Polling.MaxAttempts > 600 {
		c.Polling.MaxAttempts = 600
	}
	if c.Polling.ErrorBackoffSecs <= 0 {
		c.Polling.ErrorBackoffSecs = 2
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	case "":
		c.UI.Theme = "auto"
	default:
		return fmt.Errorf("ui.theme must be dark, light, or auto, got %q", c.UI.Theme)
	}
	if c.UI.MarkdownWidth <= 0 {
		c.UI.MarkdownWidth = 80
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// PollInterval returns the steady-state polling interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalSecs) * time.Second
}

// PollErrorBackoff returns the transport-error back-off delay.
func (c *Config) PollErrorBackoff() time.Duration {
	return time.Duration(c.Polling.ErrorBackoffSecs) * time.Second
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// Global returns the process-wide configuration, loading it on first use.
// Falls back to defaults if loading fails.
func Global() *Config {
	globalMu.RLock()
	if globalCfg != nil {
		defer globalMu.RUnlock()
		return globalCfg
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalCfg == nil {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		globalCfg = cfg
	}
	return globalCfg
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = cfg
}

// ReloadGlobal re-reads configuration from disk and swaps it in.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// ResetGlobalForTesting clears the global config. Tests only.
func ResetGlobalForTesting() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = nil
}
