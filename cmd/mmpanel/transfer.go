package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/mmpanel/internal/ipc"
	"github.com/1broseidon/mmpanel/internal/palette"
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Move status indicators to secondary panels",
	Long: `Manage the indicator transfer mapping. A transferred indicator leaves
the primary panel and shows on the panel of the target monitor while that
monitor exists; it returns to the primary panel otherwise.`,
}

var transferListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transferred indicators",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := ipc.NewClient().ListTransfers()
		if err != nil {
			return err
		}
		return newPrinter(listOpts.json).transfers(data)
	},
}

var transferAddCmd = &cobra.Command{
	Use:   "add <indicator> <monitor>",
	Short: "Transfer an indicator to a monitor",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		monitor, err := parseMonitor(args[1])
		if err != nil {
			return err
		}
		if err := ipc.NewClient().SetTransfer(args[0], monitor); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> monitor %d\n", args[0], monitor)
		return nil
	},
}

var transferRemoveCmd = &cobra.Command{
	Use:     "remove <indicator>",
	Aliases: []string{"rm"},
	Short:   "Return an indicator to the primary panel",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ipc.NewClient().RemoveTransfer(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s returned to the primary panel\n", args[0])
		return nil
	},
}

var transferPickOpts struct {
	launcher string
}

var transferPickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose an indicator and its monitor from a launcher menu",
	Long: `Open a rofi, fuzzel or dmenu menu listing the indicators that can be
transferred, then one listing the monitors. Bind it to a key to move
indicators without a terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		menu, err := palette.New(transferPickOpts.launcher)
		if err != nil {
			return err
		}
		err = pickTransfer(ipc.NewClient(), menu)
		if errors.Is(err, palette.ErrCancelled) {
			return nil
		}
		return err
	},
}

// transferClient is the part of the IPC client pickTransfer drives.
type transferClient interface {
	ListTransfers() (*ipc.TransfersData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	SetTransfer(indicator string, monitor int) error
	RemoveTransfer(indicator string) error
}

func pickTransfer(client transferClient, menu palette.Backend) error {
	transfers, err := client.ListTransfers()
	if err != nil {
		return err
	}
	monitors, err := client.GetMonitors()
	if err != nil {
		return err
	}

	current := map[string]int{}
	for _, t := range transfers.Transfers {
		current[t.Indicator] = t.Monitor
	}
	names := append([]string(nil), transfers.Available...)
	for _, t := range transfers.Transfers {
		if !slices.Contains(names, t.Indicator) {
			names = append(names, t.Indicator)
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("no indicators available for transfer")
	}
	slices.Sort(names)

	items := make([]palette.Item, 0, len(names))
	for _, name := range names {
		label := name
		_, moved := current[name]
		if moved {
			label = fmt.Sprintf("%s  (monitor %d)", name, current[name])
		}
		items = append(items, palette.Item{Label: label, Value: name, Active: moved})
	}
	chosen, err := menu.Choose("Indicator", items)
	if err != nil {
		return err
	}
	indicator := chosen.Value

	items = []palette.Item{{Label: "Primary panel", Value: "primary"}}
	for _, m := range monitors.Monitors {
		if m.Primary {
			continue
		}
		target, moved := current[indicator]
		items = append(items, palette.Item{
			Label:  fmt.Sprintf("%d: %s (%dx%d)", m.ID, m.Name, m.Width, m.Height),
			Value:  strconv.Itoa(m.ID),
			Active: moved && target == m.ID,
		})
	}
	chosen, err = menu.Choose(indicator, items)
	if err != nil {
		return err
	}
	if chosen.Value == "primary" {
		if _, moved := current[indicator]; !moved {
			return nil
		}
		return client.RemoveTransfer(indicator)
	}
	monitor, err := strconv.Atoi(chosen.Value)
	if err != nil {
		return err
	}
	return client.SetTransfer(indicator, monitor)
}

func parseMonitor(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid monitor index %q", s)
	}
	return n, nil
}

func init() {
	transferListCmd.Flags().BoolVar(&listOpts.json, "json", false, "Output as JSON")
	transferPickCmd.Flags().StringVar(&transferPickOpts.launcher, "launcher", "auto",
		"Menu program: auto, "+strings.Join(palette.Backends, ", "))
	transferCmd.AddCommand(transferListCmd, transferAddCmd, transferRemoveCmd, transferPickCmd)
	rootCmd.AddCommand(transferCmd)
}
