package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/mmpanel/internal/ipc"
	"github.com/1broseidon/mmpanel/internal/mcp"
	"github.com/1broseidon/mmpanel/internal/tui"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Edit preferences interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := settingsPath()
		if err != nil {
			return err
		}
		return tui.Run(path)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the daemon's tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcp.NewServer(ipc.NewClient()).Run(cmd.Context())
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(prefsCmd, mcpCmd)
}
