package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/mmpanel/internal/runtimepath"
)

// Backend answers IPC commands. Implementations run each call on the
// daemon event loop; ctx bounds how long the server waits for it.
type Backend interface {
	Reload(ctx context.Context) error
	Status(ctx context.Context) (StatusData, error)
	Monitors(ctx context.Context) ([]MonitorInfo, error)
	Panels(ctx context.Context) ([]PanelInfo, error)
	Transfers(ctx context.Context) (TransfersData, error)
	SetTransfer(ctx context.Context, indicator string, monitor int) error
	RemoveTransfer(ctx context.Context, indicator string) error
	ToggleOverview(ctx context.Context) (OverviewData, error)
}

const requestTimeout = 5 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	backend      Backend
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a server on the default socket path.
func NewServer(backend Backend) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, backend), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, backend Backend) *Server {
	// Remove a stale socket from a previous run.
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		backend:    backend,
		startTime:  time.Now(),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	slog.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// Serve starts the server and stops it when ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Warn("IPC accept failed", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection serves one newline-terminated JSON request.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		slog.Debug("IPC read failed", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		slog.Debug("failed to send response", "error", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch req.Command {
	case CommandReload:
		return s.handleReload(ctx)
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandGetMonitors:
		return s.handleGetMonitors(ctx)
	case CommandListPanels:
		return s.handleListPanels(ctx)
	case CommandListTransfers:
		return s.handleListTransfers(ctx)
	case CommandSetTransfer:
		return s.handleSetTransfer(ctx, req.Payload)
	case CommandRemoveTransfer:
		return s.handleRemoveTransfer(ctx, req.Payload)
	case CommandToggleOverview:
		return s.handleToggleOverview(ctx)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload(ctx context.Context) *Response {
	slog.Info("reload requested over IPC")
	if err := s.backend.Reload(ctx); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload: %v", err))
	}
	return ok(nil)
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	status, err := s.backend.Status(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	status.DaemonRunning = true
	return ok(status)
}

func (s *Server) handleGetMonitors(ctx context.Context) *Response {
	monitors, err := s.backend.Monitors(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}
	return ok(MonitorsData{Monitors: monitors})
}

func (s *Server) handleListPanels(ctx context.Context) *Response {
	panels, err := s.backend.Panels(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list panels: %v", err))
	}
	return ok(PanelsData{Panels: panels})
}

func (s *Server) handleListTransfers(ctx context.Context) *Response {
	data, err := s.backend.Transfers(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list transfers: %v", err))
	}
	return ok(data)
}

func (s *Server) handleSetTransfer(ctx context.Context, payload json.RawMessage) *Response {
	var req SetTransferPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set transfer payload: %v", err))
	}
	if strings.TrimSpace(req.Indicator) == "" {
		return NewErrorResponse("indicator is required")
	}
	if req.Monitor < 0 {
		return NewErrorResponse("monitor must be >= 0")
	}
	slog.Info("transfer set over IPC", "indicator", req.Indicator, "monitor", req.Monitor)
	if err := s.backend.SetTransfer(ctx, req.Indicator, req.Monitor); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to set transfer: %v", err))
	}
	return ok(nil)
}

func (s *Server) handleRemoveTransfer(ctx context.Context, payload json.RawMessage) *Response {
	var req RemoveTransferPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid remove transfer payload: %v", err))
	}
	if strings.TrimSpace(req.Indicator) == "" {
		return NewErrorResponse("indicator is required")
	}
	slog.Info("transfer removed over IPC", "indicator", req.Indicator)
	if err := s.backend.RemoveTransfer(ctx, req.Indicator); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to remove transfer: %v", err))
	}
	return ok(nil)
}

func (s *Server) handleToggleOverview(ctx context.Context) *Response {
	data, err := s.backend.ToggleOverview(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to toggle overview: %v", err))
	}
	return ok(data)
}

func ok(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop closes the listener and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
