package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/mmpanel/internal/ipc"
)

var listOpts struct {
	json bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := ipc.NewClient().GetStatus()
		if err != nil {
			return err
		}
		return newPrinter(listOpts.json).status(status)
	},
}

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List the monitors the daemon sees",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := ipc.NewClient().GetMonitors()
		if err != nil {
			return err
		}
		return newPrinter(listOpts.json).monitors(data)
	},
}

var panelsCmd = &cobra.Command{
	Use:   "panels",
	Short: "List the secondary panels and their contents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := ipc.NewClient().ListPanels()
		if err != nil {
			return err
		}
		return newPrinter(listOpts.json).panels(data)
	},
}

func init() {
	for _, c := range []*cobra.Command{statusCmd, monitorsCmd, panelsCmd} {
		c.Flags().BoolVar(&listOpts.json, "json", false, "Output as JSON")
		rootCmd.AddCommand(c)
	}
}
