// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for opsdeck.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.opsdeck/config.toml
//   - ~/.opsdeck/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/opsdeck-tui/internal/api"
	"github.com/jeranaias/opsdeck-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete opsdeck configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Server configuration
	Server ServerConfig `toml:"server" json:"server"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Audit configuration
	Audit AuditConfig `toml:"audit" json:"audit"`
}

// ServerConfig tells the console where the backend lives.
type ServerConfig struct {
	// Mode selects the deployment environment: "auto", "development",
	// "production". "auto" decides from the machine's hostname.
	Mode string `toml:"mode" json:"mode"`
	// DevURL is the backend base URL for development deployments.
	DevURL string `toml:"dev_url" json:"dev_url"`
	// ProdURL is the backend base URL for production deployments.
	ProdURL string `toml:"prod_url" json:"prod_url"`
	// LegacyBaseURL is the pre-split base URL, kept as a production
	// fallback for older installs.
	LegacyBaseURL string `toml:"legacy_base_url" json:"legacy_base_url"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// AuditConfig contains audit logging configuration.
type AuditConfig struct {
	// Enabled controls whether auth events are recorded
	Enabled bool `toml:"enabled" json:"enabled"`
	// DatabasePath overrides the audit database location
	// (empty = default ~/.opsdeck/audit.db)
	DatabasePath string `toml:"database_path" json:"database_path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Server: ServerConfig{
			Mode:        "auto",
			TimeoutSecs: 15,
		},
		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
		},
		Audit: AuditConfig{
			Enabled: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the opsdeck configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".opsdeck"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration, trying TOML first, then JSON, then
// built-in defaults. Environment overrides and validation apply in
// every case.
func Load() (*Config, error) {
	cfg := Default()

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finish(cfg)
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finish(cfg)
		}
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# opsdeck configuration file\n")
	buf.WriteString("# Generated by opsdeck - edit with care\n")
	buf.WriteString("\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies OPSDECK_* environment variables on top of
// the loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if mode := os.Getenv("OPSDECK_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if u := os.Getenv("OPSDECK_DEV_URL"); u != "" {
		c.Server.DevURL = u
	}
	if u := os.Getenv("OPSDECK_PROD_URL"); u != "" {
		c.Server.ProdURL = u
	}
	if u := os.Getenv("OPSDECK_BASE_URL"); u != "" {
		c.Server.LegacyBaseURL = u
	}
	if secs := os.Getenv("OPSDECK_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil {
			c.Server.TimeoutSecs = n
		}
	}
	if theme := os.Getenv("OPSDECK_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if audit := os.Getenv("OPSDECK_AUDIT"); audit != "" {
		c.Audit.Enabled = audit == "1" || strings.EqualFold(audit, "true")
	}
}

// SetDefaults fills in zero values that must never stay zero.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0.0"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "auto"
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = 15
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "dark"
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

	validModes := map[string]bool{"auto": true, "development": true, "production": true}
	if !validModes[strings.ToLower(c.Server.Mode)] {
		errs = append(errs, ValidationError{
			Field:   "server.mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: auto, development, production", c.Server.Mode),
		})
	}

	for field, value := range map[string]string{
		"server.dev_url":         c.Server.DevURL,
		"server.prod_url":        c.Server.ProdURL,
		"server.legacy_base_url": c.Server.LegacyBaseURL,
	} {
		if value == "" {
			continue
		}
		if u, err := url.Parse(value); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid URL '%s'", value),
			})
		}
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT RESOLUTION
// =============================================================================

// Environment maps the server configuration to the deployment
// description the base URL resolver consumes. The hostname argument is
// the local machine name; pass os.Hostname's result.
func (c *Config) Environment(hostname string) api.Environment {
	mode := strings.ToLower(c.Server.Mode)
	return api.Environment{
		DevelopmentBuild: mode == "development",
		ProductionBuild:  mode == "production",
		DevURL:           c.Server.DevURL,
		ProdURL:          c.Server.ProdURL,
		LegacyBaseURL:    c.Server.LegacyBaseURL,
		Hostname:         hostname,
	}
}

// =============================================================================
// KEY ACCESS (for `opsdeck config get/set`)
// =============================================================================

// GetAllKeys returns every settable configuration key.
func GetAllKeys() []string {
	return []string{
		"server.mode",
		"server.dev_url",
		"server.prod_url",
		"server.legacy_base_url",
		"server.timeout_secs",
		"ui.theme",
		"ui.compact_mode",
		"audit.enabled",
		"audit.database_path",
	}
}

// GetKey returns the string form of one configuration value.
func (c *Config) GetKey(key string) (string, error) {
	switch key {
	case "server.mode":
		return c.Server.Mode, nil
	case "server.dev_url":
		return c.Server.DevURL, nil
	case "server.prod_url":
		return c.Server.ProdURL, nil
	case "server.legacy_base_url":
		return c.Server.LegacyBaseURL, nil
	case "server.timeout_secs":
		return strconv.Itoa(c.Server.TimeoutSecs), nil
	case "ui.theme":
		return c.UI.Theme, nil
	case "ui.compact_mode":
		return strconv.FormatBool(c.UI.CompactMode), nil
	case "audit.enabled":
		return strconv.FormatBool(c.Audit.Enabled), nil
	case "audit.database_path":
		return c.Audit.DatabasePath, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// SetKey sets one configuration value from its string form. The change
// is validated before it lands.
func (c *Config) SetKey(key, value string) error {
	switch key {
	case "server.mode":
		c.Server.Mode = value
	case "server.dev_url":
		c.Server.DevURL = value
	case "server.prod_url":
		c.Server.ProdURL = value
	case "server.legacy_base_url":
		c.Server.LegacyBaseURL = value
	case "server.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("server.timeout_secs: %w", err)
		}
		c.Server.TimeoutSecs = n
	case "ui.theme":
		c.UI.Theme = value
	case "ui.compact_mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ui.compact_mode: %w", err)
		}
		c.UI.CompactMode = b
	case "audit.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("audit.enabled: %w", err)
		}
		c.Audit.Enabled = b
	case "audit.database_path":
		c.Audit.DatabasePath = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	c.SetDefaults()
	return c.Validate()
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Get returns the global configuration, loading it on first use. A load
// failure degrades to defaults.
func Get() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the global configuration (used by the watcher and
// by tests).
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}
