package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/mmpanel/internal/ipc"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Control the overview",
}

var overviewToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Show or hide the overview on every monitor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := ipc.NewClient().ToggleOverview()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), overviewState(data.Visible, data.Mode))
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-read configuration and rebuild the panels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ipc.NewClient().Reload()
	},
}

func init() {
	overviewCmd.AddCommand(overviewToggleCmd)
	rootCmd.AddCommand(overviewCmd, reloadCmd)
}
