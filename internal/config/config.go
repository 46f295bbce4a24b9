// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for tradeterm.
//
// Configuration sources, in order of precedence:
//   - Environment variables (TRADETERM_API_URL, TRADETERM_BOT_NAME)
//   - ~/.tradeterm/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete tradeterm configuration.
type Config struct {
	// API settings
	API APIConfig `toml:"api"`

	// Telegram login widget settings
	Telegram TelegramConfig `toml:"telegram"`

	// UI settings
	UI UIConfig `toml:"ui"`

	// DataDir is the directory for persisted state (empty = ~/.tradeterm)
	DataDir string `toml:"data_dir"`

	// StarterPrompts are offered when no conversation is active
	StarterPrompts []string `toml:"starter_prompts"`

	// Project links shown on the login screen
	Links LinksConfig `toml:"links"`
}

// APIConfig contains backend API settings.
type APIConfig struct {
	// BaseURL is the base URL of the backend API
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
}

// TelegramConfig contains login widget settings.
type TelegramConfig struct {
	// BotName is the Telegram bot the login widget authenticates against
	BotName string `toml:"bot_name"`
	// ButtonSize is "large", "medium", or "small"
	ButtonSize string `toml:"button_size"`
	// CornerRadius is the widget button corner radius in pixels
	CornerRadius int `toml:"corner_radius"`
	// ShowAvatar requests the user's photo through the widget
	ShowAvatar bool `toml:"show_avatar"`
}

// UIConfig contains UI settings.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// CompactSidebar uses a narrower conversation list
	CompactSidebar bool `toml:"compact_sidebar"`
}

// LinksConfig contains the project links shown on the login screen.
type LinksConfig struct {
	ContractAddress string `toml:"contract_address"`
	TwitterURL      string `toml:"twitter_url"`
	TelegramURL     string `toml:"telegram_url"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:8000/api",
			TimeoutSecs: 60,
		},
		Telegram: TelegramConfig{
			BotName:      "TerminalOfTradeBot",
			ButtonSize:   "large",
			CornerRadius: 8,
			ShowAvatar:   false,
		},
		UI: UIConfig{
			Theme: "dark",
		},
		StarterPrompts: []string{
			"What is the current market sentiment?",
			"Analyze BTC price action",
			"Explain DeFi yield farming",
			"What are the top trending tokens?",
		},
		Links: LinksConfig{
			TwitterURL:  "https://twitter.com/TerminalOfTrade",
			TelegramURL: "https://t.me/TerminalOfTrade",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the tradeterm configuration directory (~/.tradeterm).
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tradeterm"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file, falling back to
// defaults when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, cfg.Validate()
	}

	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, cfg.Validate()
	}

	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults. A config file that
// sets some fields must not zero out the rest.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if cfg.Telegram.BotName == "" {
		cfg.Telegram.BotName = defaults.Telegram.BotName
	}
	if cfg.Telegram.ButtonSize == "" {
		cfg.Telegram.ButtonSize = defaults.Telegram.ButtonSize
	}
	if cfg.Telegram.CornerRadius == 0 {
		cfg.Telegram.CornerRadius = defaults.Telegram.CornerRadius
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if len(cfg.StarterPrompts) == 0 {
		cfg.StarterPrompts = defaults.StarterPrompts
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over the config file.
func (c *Config) ApplyEnvOverrides() {
	if apiURL := os.Getenv("TRADETERM_API_URL"); apiURL != "" {
		c.API.BaseURL = apiURL
	}
	if botName := os.Getenv("TRADETERM_BOT_NAME"); botName != "" {
		c.Telegram.BotName = botName
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("must be a valid http(s) URL, got %q", c.API.BaseURL),
		})
	}

	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.API.TimeoutSecs),
		})
	}

	switch c.Telegram.ButtonSize {
	case "large", "medium", "small":
	default:
		errs = append(errs, ValidationError{
			Field:   "telegram.button_size",
			Message: fmt.Sprintf("must be large, medium, or small, got %q", c.Telegram.ButtonSize),
		})
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be dark, light, or auto, got %q", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# tradeterm configuration file")
	fmt.Fprintln(file, "# Generated by tradeterm - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
