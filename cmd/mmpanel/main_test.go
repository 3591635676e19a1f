package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/mmpanel/internal/ipc"
	"github.com/1broseidon/mmpanel/internal/platform"
	"github.com/1broseidon/mmpanel/internal/settings"
)

func TestPrinter_MonitorsPlain(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{out: &buf}
	require.NoError(t, p.monitors(&ipc.MonitorsData{Monitors: []ipc.MonitorInfo{
		{ID: 0, Name: "DP-1", Width: 1920, Height: 1080, Primary: true},
		{ID: 1, Name: "HDMI-1", X: 1920, Width: 2560, Height: 1440},
	}}))

	out := buf.String()
	assert.Contains(t, out, "GEOMETRY")
	assert.Contains(t, out, "1920x1080+0+0")
	assert.Contains(t, out, "2560x1440+1920+0")
	assert.NotContains(t, out, "╭")
}

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{out: &buf, json: true}
	in := &ipc.TransfersData{
		Transfers: []ipc.TransferInfo{{Indicator: "nm-applet", Monitor: 1, Active: true, Box: "right"}},
		Available: []string{"nm-applet"},
	}
	require.NoError(t, p.transfers(in))

	var got ipc.TransfersData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *in, got)
}

func TestPrinter_Transfers(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{out: &buf}
	require.NoError(t, p.transfers(&ipc.TransfersData{
		Transfers: []ipc.TransferInfo{
			{Indicator: "nm-applet", Monitor: 1, Active: true, Box: "right"},
			{Indicator: "bluetooth", Monitor: 2},
		},
		Available: []string{"nm-applet", "volume"},
	}))

	out := buf.String()
	assert.Contains(t, out, "on right")
	assert.Contains(t, out, "waiting")
	assert.Contains(t, out, "available: nm-applet, volume")
}

func TestPrinter_Status(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{out: &buf}
	require.NoError(t, p.status(&ipc.StatusData{
		DaemonRunning:   true,
		Enabled:         true,
		UptimeSeconds:   90,
		Monitors:        2,
		Panels:          1,
		PanelsShown:     true,
		OverviewVisible: true,
		OverviewMode:    "workspaces",
	}))

	out := buf.String()
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "2 (primary 0)")
	assert.Contains(t, out, "1 shown")
	assert.Contains(t, out, "visible (workspaces)")
	assert.Contains(t, out, "90s (started")
}

func TestUptime(t *testing.T) {
	assert.Equal(t, "-", uptime(0))
	assert.Contains(t, uptime(3600), "1 hour ago")
}

func TestHeadlessTopology(t *testing.T) {
	topo, err := headlessTopology(1, []string{"1920x1080+0+0", "1280x1024+1920+0"})
	require.NoError(t, err)
	assert.Equal(t, 1, topo.PrimaryIndex())
	mons := topo.Monitors()
	require.Len(t, mons, 2)
	assert.Equal(t, platform.Rect{X: 1920, Width: 1280, Height: 1024}, mons[1].Bounds)

	_, err = headlessTopology(2, []string{"1920x1080+0+0"})
	assert.ErrorContains(t, err, "out of range")

	_, err = headlessTopology(0, nil)
	assert.Error(t, err)

	_, err = headlessTopology(0, []string{"wide"})
	assert.Error(t, err)
}

func TestParseMonitor(t *testing.T) {
	n, err := parseMonitor("2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = parseMonitor("-1")
	assert.Error(t, err)
	_, err = parseMonitor("left")
	assert.Error(t, err)
}

func TestOptionalService(t *testing.T) {
	setupLogger(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	svc := optional("bus", func(context.Context) error { return errors.New("no session bus") })
	assert.NoError(t, svc(ctx))
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}

// execute runs the root command against a config whose settings live in dir.
func execute(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cfgPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		data := []byte("settings_path: " + filepath.Join(dir, "settings.toml") + "\n")
		require.NoError(t, os.WriteFile(cfgPath, data, 0644))
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestSettingsCommands(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "top\n", execute(t, dir, "settings", "get", "panel-position"))

	execute(t, dir, "settings", "set", "panel-position", "bottom")
	execute(t, dir, "settings", "set", "transfer-indicators", "nm-applet=1,bluetooth=2")

	assert.Equal(t, "bottom\n", execute(t, dir, "settings", "get", "panel-position"))

	store, err := settings.OpenFile(filepath.Join(dir, "settings.toml"))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"nm-applet": 1, "bluetooth": 2}, store.Mapping(settings.KeyTransferIndicators))
}

func TestSettingsSet_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("settings_path: "+filepath.Join(dir, "settings.toml")+"\n"), 0644))

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--config", cfgPath, "settings", "set", "panel-position", "left"})
	assert.Error(t, rootCmd.Execute())
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()

	out := execute(t, dir, "config", "validate")
	assert.Contains(t, out, "config.yaml: ok")

	out = execute(t, dir, "config", "print")
	assert.Contains(t, out, "panel_height: 32")
	assert.Contains(t, out, "settings.toml")

	assert.Equal(t, filepath.Join(dir, "config.yaml")+"\n", execute(t, dir, "config", "path"))
}

func TestConfigValidate_ReportsBadFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("panel_height: 0\n"), 0644))

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--config", cfgPath, "config", "validate"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panel_height")
}
