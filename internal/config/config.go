package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration. User preferences that the panels react
// to at runtime live in the settings store instead.
type Config struct {
	Display    string `yaml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`
	LogLevel   string `yaml:"log_level"`

	// ResyncInterval triggers a full reconciliation periodically; 0 disables.
	ResyncInterval time.Duration `yaml:"resync_interval"`
	// PanelHeight is the thickness of every panel and the hot-corner size.
	PanelHeight int `yaml:"panel_height"`
	// SettingsPath overrides ~/.config/mmpanel/settings.toml.
	SettingsPath string `yaml:"settings_path,omitempty"`
	// SessionIndicators are never offered for transfer.
	SessionIndicators []string `yaml:"session_indicators"`
	OverviewHotkey    string   `yaml:"overview_hotkey"`
	// StatusNotifier enables the D-Bus StatusNotifierItem registry.
	StatusNotifier bool `yaml:"status_notifier"`
	// RTL mirrors hot corners to the right edge.
	RTL bool `yaml:"rtl"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "info",
		ResyncInterval:    30 * time.Second,
		PanelHeight:       32,
		SessionIndicators: []string{"activities", "date-time"},
		OverviewHotkey:    "Mod4-s",
		StatusNotifier:    true,
	}
}

// ValidationError reports the first invalid key.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.ResyncInterval < 0 {
		return &ValidationError{Path: "resync_interval", Err: fmt.Errorf("resync_interval must be >= 0")}
	}
	if c.ResyncInterval > 0 && c.ResyncInterval < time.Second {
		return &ValidationError{Path: "resync_interval", Err: fmt.Errorf("resync_interval must be 0 or at least 1s")}
	}
	if c.PanelHeight <= 0 || c.PanelHeight > 256 {
		return &ValidationError{Path: "panel_height", Err: fmt.Errorf("panel_height must be between 1 and 256")}
	}
	for i, name := range c.SessionIndicators {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: fmt.Sprintf("session_indicators[%d]", i), Err: fmt.Errorf("indicator name must not be empty")}
		}
	}
	return nil
}

// SlogLevel maps LogLevel onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsSessionIndicator reports whether name is reserved for the session.
func (c *Config) IsSessionIndicator(name string) bool {
	for _, s := range c.SessionIndicators {
		if s == name {
			return true
		}
	}
	return false
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
