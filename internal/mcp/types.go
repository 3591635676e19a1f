package mcp

import "github.com/1broseidon/mmpanel/internal/ipc"

// EmptyInput is the input for tools without arguments.
type EmptyInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	Running bool            `json:"running"`
	Status  *ipc.StatusData `json:"status,omitempty"`
}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []ipc.MonitorInfo `json:"monitors"`
}

// ListPanelsOutput is the output for the list_panels tool.
type ListPanelsOutput struct {
	Panels []ipc.PanelInfo `json:"panels"`
}

// ListTransfersOutput is the output for the list_transfers tool.
type ListTransfersOutput struct {
	Transfers []ipc.TransferInfo `json:"transfers"`
	Available []string           `json:"available"`
}

// SetTransferInput is the input for the set_transfer tool.
type SetTransferInput struct {
	Indicator string `json:"indicator" jsonschema:"required,Indicator name as shown by list_transfers (e.g. nm-applet)"`
	Monitor   int    `json:"monitor" jsonschema:"required,Index of the target monitor as shown by list_monitors. Must not be the primary monitor."`
}

// RemoveTransferInput is the input for the remove_transfer tool.
type RemoveTransferInput struct {
	Indicator string `json:"indicator" jsonschema:"required,Indicator name to return to the primary panel"`
}

// TransferOutput is the output for set_transfer and remove_transfer.
type TransferOutput struct {
	Indicator string `json:"indicator"`
	Monitor   *int   `json:"monitor,omitempty"`
	Active    bool   `json:"active"`
}

// OverviewOutput is the output for the toggle_overview tool.
type OverviewOutput struct {
	Visible bool   `json:"visible"`
	Mode    string `json:"mode"`
}

// ReloadOutput is the output for the reload tool.
type ReloadOutput struct {
	Reloaded bool `json:"reloaded"`
}
