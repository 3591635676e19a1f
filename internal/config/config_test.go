package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.PanelHeight <= 0 {
		t.Fatalf("expected positive default panel_height, got %d", cfg.PanelHeight)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if res.Config.LogLevel != "info" {
		t.Fatalf("expected default log level, got %q", res.Config.LogLevel)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("# empty\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.ResyncInterval != 30*time.Second {
		t.Fatalf("expected default resync interval, got %v", res.Config.ResyncInterval)
	}
}

func TestLoadFromPath_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := strings.Join([]string{
		"display: \":1\"",
		"log_level: debug",
		"resync_interval: 5s",
		"panel_height: 28",
		"rtl: true",
		"status_notifier: false",
		"session_indicators: [a11y]",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Display != ":1" || cfg.LogLevel != "debug" || cfg.PanelHeight != 28 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.ResyncInterval != 5*time.Second {
		t.Fatalf("expected 5s, got %v", cfg.ResyncInterval)
	}
	if !cfg.RTL || cfg.StatusNotifier {
		t.Fatalf("expected rtl=true status_notifier=false, got %+v", cfg)
	}
	if !cfg.IsSessionIndicator("a11y") || cfg.IsSessionIndicator("keyboard") {
		t.Fatalf("unexpected session indicators: %v", cfg.SessionIndicators)
	}
	if cfg.OverviewHotkey != "Mod4-s" {
		t.Fatalf("expected default hotkey to survive, got %q", cfg.OverviewHotkey)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("panel_heigth: 10\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: info\npanel_height: 0\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "panel_height" {
		t.Fatalf("expected panel_height, got %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("expected line 2, got %d", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), "config.yaml:2:") {
		t.Fatalf("expected file position in %q", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"negative resync", func(c *Config) { c.ResyncInterval = -time.Second }, "resync_interval"},
		{"tiny resync", func(c *Config) { c.ResyncInterval = time.Millisecond }, "resync_interval"},
		{"huge panel", func(c *Config) { c.PanelHeight = 1000 }, "panel_height"},
		{"blank session indicator", func(c *Config) { c.SessionIndicators = []string{"a", " "} }, "session_indicators[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.PanelHeight = 40
	cfg.OverviewHotkey = ""
	if err := cfg.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.PanelHeight != 40 || loaded.OverviewHotkey != "" {
		t.Fatalf("unexpected config after round trip: %+v", loaded)
	}
}
