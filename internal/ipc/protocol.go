package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload         CommandType = "RELOAD"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandGetMonitors    CommandType = "GET_MONITORS"
	CommandListPanels     CommandType = "LIST_PANELS"
	CommandListTransfers  CommandType = "LIST_TRANSFERS"
	CommandSetTransfer    CommandType = "SET_TRANSFER"
	CommandRemoveTransfer CommandType = "REMOVE_TRANSFER"
	CommandToggleOverview CommandType = "TOGGLE_OVERVIEW"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	UptimeSeconds   int64    `json:"uptime_seconds"`
	DaemonRunning   bool     `json:"daemon_running"`
	Enabled         bool     `json:"enabled"`
	Monitors        int      `json:"monitors"`
	Primary         int      `json:"primary"`
	Workspaces      int      `json:"workspaces"`
	PanelsShown     bool     `json:"panels_shown"`
	Panels          int      `json:"panels"`
	Transfers       int      `json:"transfers"`
	HotCorners      int      `json:"hot_corners"`
	Mirrors         int      `json:"mirrors"`
	OverviewVisible bool     `json:"overview_visible"`
	OverviewMode    string   `json:"overview_mode"`
	Indicators      []string `json:"indicators"`
	SettingsPath    string   `json:"settings_path,omitempty"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Primary bool   `json:"primary"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// PanelInfo describes one per-monitor panel and the contents of its boxes.
type PanelInfo struct {
	ID       string   `json:"id"`
	Monitor  int      `json:"monitor"`
	Identity string   `json:"identity"`
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Left     []string `json:"left"`
	Center   []string `json:"center"`
	Right    []string `json:"right"`
}

type PanelsData struct {
	Panels []PanelInfo `json:"panels"`
}

// TransferInfo is one entry of the transfer mapping. Active is set when the
// indicator currently sits on the target panel.
type TransferInfo struct {
	Indicator string `json:"indicator"`
	Monitor   int    `json:"monitor"`
	Active    bool   `json:"active"`
	Box       string `json:"box,omitempty"`
}

type TransfersData struct {
	Transfers []TransferInfo `json:"transfers"`
	Available []string       `json:"available"`
}

type SetTransferPayload struct {
	Indicator string `json:"indicator"`
	Monitor   int    `json:"monitor"`
}

type RemoveTransferPayload struct {
	Indicator string `json:"indicator"`
}

type OverviewData struct {
	Visible bool   `json:"visible"`
	Mode    string `json:"mode"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
