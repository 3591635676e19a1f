// Package main provides the mmpanel command line: the panel daemon and the
// clients that talk to it.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/mmpanel/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		socket     string
	}
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mmpanel",
	Short: "Per-monitor panels for X11 desktops",
	Long: `mmpanel puts a panel on every monitor, mirrors workspace thumbnails
and hot corners onto secondary monitors, and moves chosen status indicators
from the primary panel to the panel of another monitor.

Run "mmpanel daemon" from your session startup; the other commands talk to
the running daemon over its socket.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if globalOpts.socket != "" {
			os.Setenv("MMPANEL_SOCKET", globalOpts.socket)
		}
		var err error
		cfg, err = loadConfig()
		if err != nil {
			setupLogger(slog.LevelInfo)
			return fmt.Errorf("failed to load config: %w", err)
		}
		setupLogger(cfg.SlogLevel())
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/mmpanel/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.socket, "socket", "",
		"Daemon socket (default: $XDG_RUNTIME_DIR/mmpanel.sock)")
}

func configPath() (string, error) {
	if globalOpts.configPath != "" {
		return globalOpts.configPath, nil
	}
	return config.DefaultConfigPath()
}

func loadConfig() (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// setupLogger configures the global slog logger. --verbose wins over the
// configured level.
func setupLogger(level slog.Level) {
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}
