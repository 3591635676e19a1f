package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/mmpanel/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the daemon configuration",
	// Replaces the root hook so that a broken file can still be validated.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(slog.LevelInfo)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		res, err := config.LoadFromPath(path)
		if err != nil {
			return err
		}
		if res.File == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s does not exist; using defaults\n", path)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", res.File)
		return nil
	},
}

var configPrintOpts struct {
	defaults bool
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config.DefaultConfig()
		if !configPrintOpts.defaults {
			path, err := configPath()
			if err != nil {
				return err
			}
			res, err := config.LoadFromPath(path)
			if err != nil {
				return err
			}
			c = res.Config
		}
		data, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configPrintCmd.Flags().BoolVar(&configPrintOpts.defaults, "defaults", false, "Print the built-in defaults instead")
	configCmd.AddCommand(configPathCmd, configValidateCmd, configPrintCmd)
	rootCmd.AddCommand(configCmd)
}
