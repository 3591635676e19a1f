package ipc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTimeout = 2 * time.Second
	testTick    = 10 * time.Millisecond
)

type fakeBackend struct {
	mu       sync.Mutex
	mapping  map[string]int
	reloads  int
	overview bool
	failSet  error
}

func (f *fakeBackend) Reload(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return nil
}

func (f *fakeBackend) Status(context.Context) (StatusData, error) {
	return StatusData{Enabled: true, Monitors: 2, Panels: 1}, nil
}

func (f *fakeBackend) Monitors(context.Context) ([]MonitorInfo, error) {
	return []MonitorInfo{
		{ID: 0, Name: "DP-1", Width: 1920, Height: 1080, Primary: true},
		{ID: 1, Name: "HDMI-1", X: 1920, Width: 1920, Height: 1080},
	}, nil
}

func (f *fakeBackend) Panels(context.Context) ([]PanelInfo, error) {
	return []PanelInfo{{ID: "01J", Monitor: 1, Left: []string{"activities"}}}, nil
}

func (f *fakeBackend) Transfers(context.Context) (TransfersData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []TransferInfo
	for name, m := range f.mapping {
		out = append(out, TransferInfo{Indicator: name, Monitor: m})
	}
	return TransfersData{Transfers: out, Available: []string{"volume"}}, nil
}

func (f *fakeBackend) SetTransfer(_ context.Context, indicator string, monitor int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil {
		return f.failSet
	}
	f.mapping[indicator] = monitor
	return nil
}

func (f *fakeBackend) RemoveTransfer(_ context.Context, indicator string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.mapping[indicator]; !ok {
		return errors.New("not mapped")
	}
	delete(f.mapping, indicator)
	return nil
}

func (f *fakeBackend) ToggleOverview(context.Context) (OverviewData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overview = !f.overview
	return OverviewData{Visible: f.overview, Mode: "window-picker"}, nil
}

func startServer(t *testing.T) (*fakeBackend, *Client, string) {
	t.Helper()
	backend := &fakeBackend{mapping: map[string]int{}}
	path := filepath.Join(t.TempDir(), "mmpanel.sock")
	srv := NewServerAt(path, backend)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return backend, NewClientAt(path), path
}

func TestServer_SocketPermissions(t *testing.T) {
	_, _, path := startServer(t)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestClient_StatusAndMonitors(t *testing.T) {
	_, c, _ := startServer(t)

	status, err := c.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.DaemonRunning)
	assert.True(t, status.Enabled)
	assert.Equal(t, 2, status.Monitors)

	mons, err := c.GetMonitors()
	require.NoError(t, err)
	require.Len(t, mons.Monitors, 2)
	assert.True(t, mons.Monitors[0].Primary)
	assert.Equal(t, "HDMI-1", mons.Monitors[1].Name)

	panels, err := c.ListPanels()
	require.NoError(t, err)
	require.Len(t, panels.Panels, 1)
	assert.Equal(t, []string{"activities"}, panels.Panels[0].Left)

	require.NoError(t, c.Ping())
}

func TestClient_Transfers(t *testing.T) {
	backend, c, _ := startServer(t)

	require.NoError(t, c.SetTransfer("volume", 1))
	data, err := c.ListTransfers()
	require.NoError(t, err)
	assert.Equal(t, []TransferInfo{{Indicator: "volume", Monitor: 1}}, data.Transfers)
	assert.Equal(t, []string{"volume"}, data.Available)

	require.NoError(t, c.RemoveTransfer("volume"))
	backend.mu.Lock()
	assert.Empty(t, backend.mapping)
	backend.mu.Unlock()

	err = c.RemoveTransfer("volume")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not mapped")
}

func TestServer_ValidatesTransferPayload(t *testing.T) {
	_, c, _ := startServer(t)

	err := c.SetTransfer("", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indicator is required")

	err = c.SetTransfer("volume", -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitor must be >= 0")
}

func TestServer_BackendErrors(t *testing.T) {
	backend, c, _ := startServer(t)
	backend.mu.Lock()
	backend.failSet = errors.New("settings locked")
	backend.mu.Unlock()

	err := c.SetTransfer("volume", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings locked")
}

func TestClient_ReloadAndOverview(t *testing.T) {
	backend, c, _ := startServer(t)

	require.NoError(t, c.Reload())
	backend.mu.Lock()
	assert.Equal(t, 1, backend.reloads)
	backend.mu.Unlock()

	ov, err := c.ToggleOverview()
	require.NoError(t, err)
	assert.True(t, ov.Visible)
	ov, err = c.ToggleOverview()
	require.NoError(t, err)
	assert.False(t, ov.Visible)
}

func TestServer_UnknownCommand(t *testing.T) {
	_, c, _ := startServer(t)
	err := c.call(CommandType("NOPE"), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown command")
}

func TestClient_NoDaemon(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	err := c.Ping()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is the daemon running?")
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.sock")
	srv := NewServerAt(path, &fakeBackend{mapping: map[string]int{}})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	require.Eventually(t, func() bool {
		return NewClientAt(path).Ping() == nil
	}, testTimeout, testTick)

	cancel()
	require.NoError(t, <-done)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
