package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/mmpanel/internal/ipc"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		// A stopped daemon is a valid answer, not a tool failure.
		return nil, StatusOutput{Running: false}, nil
	}
	return nil, StatusOutput{Running: true, Status: st}, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.daemon.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, fmt.Errorf("list_monitors: %w", err)
	}
	out := ListMonitorsOutput{Monitors: data.Monitors}
	if out.Monitors == nil {
		out.Monitors = []ipc.MonitorInfo{}
	}
	return nil, out, nil
}

func (s *Server) handleListPanels(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListPanelsOutput, error) {
	data, err := s.daemon.ListPanels()
	if err != nil {
		return nil, ListPanelsOutput{}, fmt.Errorf("list_panels: %w", err)
	}
	out := ListPanelsOutput{Panels: data.Panels}
	if out.Panels == nil {
		out.Panels = []ipc.PanelInfo{}
	}
	return nil, out, nil
}

func (s *Server) handleListTransfers(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListTransfersOutput, error) {
	data, err := s.daemon.ListTransfers()
	if err != nil {
		return nil, ListTransfersOutput{}, fmt.Errorf("list_transfers: %w", err)
	}
	out := ListTransfersOutput{Transfers: data.Transfers, Available: data.Available}
	if out.Transfers == nil {
		out.Transfers = []ipc.TransferInfo{}
	}
	if out.Available == nil {
		out.Available = []string{}
	}
	return nil, out, nil
}

func (s *Server) handleSetTransfer(_ context.Context, _ *mcpsdk.CallToolRequest, args SetTransferInput) (*mcpsdk.CallToolResult, TransferOutput, error) {
	name := strings.TrimSpace(args.Indicator)
	if name == "" {
		return nil, TransferOutput{}, fmt.Errorf("set_transfer: indicator is required")
	}
	if err := s.checkTargetMonitor(args.Monitor); err != nil {
		return nil, TransferOutput{}, fmt.Errorf("set_transfer: %w", err)
	}
	if err := s.daemon.SetTransfer(name, args.Monitor); err != nil {
		return nil, TransferOutput{}, fmt.Errorf("set_transfer: %w", err)
	}

	monitor := args.Monitor
	out := TransferOutput{Indicator: name, Monitor: &monitor}
	if data, err := s.daemon.ListTransfers(); err == nil {
		for _, t := range data.Transfers {
			if t.Indicator == name {
				out.Active = t.Active
			}
		}
	}
	return nil, out, nil
}

// checkTargetMonitor rejects the primary monitor and unknown indexes.
func (s *Server) checkTargetMonitor(index int) error {
	data, err := s.daemon.GetMonitors()
	if err != nil {
		return err
	}
	for _, m := range data.Monitors {
		if m.ID != index {
			continue
		}
		if m.Primary {
			return fmt.Errorf("monitor %d is the primary monitor", index)
		}
		return nil
	}
	return fmt.Errorf("monitor %d not found (have %d monitors)", index, len(data.Monitors))
}

func (s *Server) handleRemoveTransfer(_ context.Context, _ *mcpsdk.CallToolRequest, args RemoveTransferInput) (*mcpsdk.CallToolResult, TransferOutput, error) {
	name := strings.TrimSpace(args.Indicator)
	if name == "" {
		return nil, TransferOutput{}, fmt.Errorf("remove_transfer: indicator is required")
	}
	if err := s.daemon.RemoveTransfer(name); err != nil {
		return nil, TransferOutput{}, fmt.Errorf("remove_transfer: %w", err)
	}
	return nil, TransferOutput{Indicator: name}, nil
}

func (s *Server) handleToggleOverview(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, OverviewOutput, error) {
	data, err := s.daemon.ToggleOverview()
	if err != nil {
		return nil, OverviewOutput{}, fmt.Errorf("toggle_overview: %w", err)
	}
	return nil, OverviewOutput{Visible: data.Visible, Mode: data.Mode}, nil
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ReloadOutput, error) {
	if err := s.daemon.Reload(); err != nil {
		return nil, ReloadOutput{}, fmt.Errorf("reload: %w", err)
	}
	return nil, ReloadOutput{Reloaded: true}, nil
}
