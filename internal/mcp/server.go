// Package mcp exposes the running daemon to MCP clients over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/mmpanel/internal/ipc"
)

const (
	ServerName    = "mmpanel"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools need.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	ListPanels() (*ipc.PanelsData, error)
	ListTransfers() (*ipc.TransfersData, error)
	SetTransfer(indicator string, monitor int) error
	RemoveTransfer(indicator string) error
	ToggleOverview() (*ipc.OverviewData, error)
	Reload() error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for panel inspection and indicator transfers.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates a server that forwards every tool call to daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report whether the panel daemon is running and summarize monitors, panels, indicator transfers, hot corners and overview state.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List connected monitors with their index, output name, geometry and which one is primary. Indexes are what set_transfer expects.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_panels",
		Description: "List the panels shown on non-primary monitors and the indicators in their left, center and right boxes.",
	}, s.handleListPanels)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_transfers",
		Description: "List the indicator transfer mapping and which indicators are available to transfer. A transfer is active when the indicator currently sits on the target monitor's panel.",
	}, s.handleListTransfers)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_transfer",
		Description: "Move an indicator from the primary panel to the panel on another monitor. The mapping is persisted and applied as soon as both the indicator and the panel exist.",
	}, s.handleSetTransfer)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_transfer",
		Description: "Remove an indicator from the transfer mapping, returning it to the primary panel.",
	}, s.handleRemoveTransfer)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_overview",
		Description: "Open or close the overview. While open in window-picker mode each secondary monitor shows a workspace slider.",
	}, s.handleToggleOverview)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload",
		Description: "Re-read the configuration and settings files and rebuild all panels.",
	}, s.handleReload)
}
