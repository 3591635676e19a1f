package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/mmpanel/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and write user preferences",
	Long: `Read and write the preferences stored in settings.toml. A running
daemon watches the file and applies changes immediately.`,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every preference and its value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}
		return newPrinter(listOpts.json).keyValues(settings.Dump(store))
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one preference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}
		v, err := settings.Get(store, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), settings.Format(v))
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one preference",
	Long: `Change one preference. Lists are comma separated; the transfer mapping
takes name=monitor pairs, e.g. "nm-applet=1,bluetooth=2".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}
		v, err := settings.Parse(args[0], args[1])
		if err != nil {
			return err
		}
		if err := settings.Set(store, args[0], v); err != nil {
			return err
		}
		logger.Debug("setting written", "key", args[0], "file", store.Path())
		return nil
	},
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Describe the known preference keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var rows [][2]string
		for _, k := range settings.Schema() {
			desc := k.Summary
			if len(k.Choices) > 0 {
				desc += " (" + strings.Join(k.Choices, "|") + ")"
			}
			rows = append(rows, [2]string{k.Name + " [" + k.Kind.String() + "]", desc})
		}
		return newPrinter(false).keyValues(rows)
	},
}

func settingsPath() (string, error) {
	if cfg != nil && cfg.SettingsPath != "" {
		return cfg.SettingsPath, nil
	}
	return settings.DefaultPath()
}

func openSettings() (*settings.File, error) {
	path, err := settingsPath()
	if err != nil {
		return nil, err
	}
	return settings.OpenFile(path)
}

func init() {
	settingsListCmd.Flags().BoolVar(&listOpts.json, "json", false, "Output as JSON")
	settingsCmd.AddCommand(settingsListCmd, settingsGetCmd, settingsSetCmd, settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}
