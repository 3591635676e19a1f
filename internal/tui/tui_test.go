package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/mmpanel/internal/ipc"
	"github.com/1broseidon/mmpanel/internal/settings"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

type fakeDaemon struct {
	monitors []ipc.MonitorInfo
	err      error
}

func (f fakeDaemon) GetMonitors() (*ipc.MonitorsData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.MonitorsData{Monitors: f.monitors}, nil
}

var twoMonitors = []ipc.MonitorInfo{
	{ID: 0, Name: "DP-1", Primary: true},
	{ID: 1, Name: "HDMI-1"},
}

func TestModel_TabNavigation(t *testing.T) {
	m := newModel(settings.NewMemory(), "", nil)
	assert.Equal(t, TabGeneral, m.activeTab)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	assert.Equal(t, TabTransfers, m.activeTab)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	assert.Equal(t, TabGeneral, m.activeTab)

	next, _ = m.Update(key("2"))
	assert.Equal(t, TabTransfers, next.(model).activeTab)
}

func TestModel_DaemonStatus(t *testing.T) {
	m := newModel(settings.NewMemory(), "", fakeDaemon{monitors: twoMonitors})
	assert.True(t, m.daemonConnected)
	assert.Len(t, m.transfersTab.monitors, 2)

	m = newModel(settings.NewMemory(), "", fakeDaemon{err: errors.New("connection refused")})
	assert.False(t, m.daemonConnected)
}

func TestModel_ViewBeforeSize(t *testing.T) {
	m := newModel(settings.NewMemory(), "", nil)
	assert.Empty(t, m.View())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, next.(model).View(), "daemon not running")
}

func TestGeneralTab_ApplyFormWritesChanges(t *testing.T) {
	store := settings.NewMemory()
	g := NewGeneralTab(store)
	g.loadForm()
	assert.True(t, g.fShowPanel)
	assert.Equal(t, settings.PositionTop, g.fPosition)

	g.fShowPanel = false
	g.fPosition = settings.PositionBottom
	g.fSlider = settings.SliderLeft
	g.applyForm()

	assert.Empty(t, g.lastError)
	assert.False(t, store.Bool(settings.KeyShowPanel))
	assert.Equal(t, settings.PositionBottom, store.String(settings.KeyPanelPosition))
	assert.Equal(t, settings.SliderLeft, store.String(settings.KeyThumbnailsSlider))
}

func TestGeneralTab_ApplyFormSkipsUnchanged(t *testing.T) {
	store := settings.NewMemory()
	changed := 0
	store.OnChanged("", func(string) { changed++ })

	g := NewGeneralTab(store)
	g.loadForm()
	g.applyForm()
	assert.Zero(t, changed)
}

func TestGeneralTab_ApplyFormReportsInvalid(t *testing.T) {
	store := settings.NewMemory()
	g := NewGeneralTab(store)
	g.loadForm()
	g.fPosition = "left"
	g.applyForm()

	assert.Contains(t, g.lastError, settings.KeyPanelPosition)
	assert.Equal(t, settings.PositionTop, store.String(settings.KeyPanelPosition))
}

func TestTransfersTab_AddAndRemove(t *testing.T) {
	store := settings.NewMemory()
	require.NoError(t, store.SetStrings(settings.KeyAvailableIndicators, []string{"nm-applet"}))
	tab := NewTransfersTab(store, twoMonitors)

	tab.add("nm-applet", 1)
	tab.add("bluetooth", 1)
	assert.Equal(t, map[string]int{"nm-applet": 1, "bluetooth": 1}, store.Mapping(settings.KeyTransferIndicators))

	items := tab.list.Items()
	require.Len(t, items, 2)
	first := items[0].(transferItem)
	assert.Equal(t, "bluetooth", first.indicator)
	assert.False(t, first.known)
	assert.True(t, items[1].(transferItem).known)

	// The first item is selected.
	tab, _ = tab.Update(key("d"))
	assert.Equal(t, map[string]int{"nm-applet": 1}, store.Mapping(settings.KeyTransferIndicators))
	assert.Len(t, tab.list.Items(), 1)
}

func TestTransfersTab_ValidateMonitor(t *testing.T) {
	tab := NewTransfersTab(settings.NewMemory(), twoMonitors)
	assert.NoError(t, tab.validateMonitor("1"))
	assert.ErrorContains(t, tab.validateMonitor("0"), "primary")
	assert.ErrorContains(t, tab.validateMonitor("4"), "no monitor")
	assert.Error(t, tab.validateMonitor("-1"))
	assert.Error(t, tab.validateMonitor("abc"))

	offline := NewTransfersTab(settings.NewMemory(), nil)
	assert.NoError(t, offline.validateMonitor("4"))
	assert.Contains(t, offline.monitorHint(), "daemon not running")
}

func TestTransfersTab_StartAddingCapturesKeys(t *testing.T) {
	m := newModel(settings.NewMemory(), "", nil)
	next, _ := m.Update(key("2"))
	m = next.(model)

	next, _ = m.Update(key("a"))
	m = next.(model)
	require.True(t, m.transfersTab.adding)
	assert.True(t, m.capturing())

	// "q" goes to the form instead of quitting.
	next, _ = m.Update(key("q"))
	m = next.(model)
	assert.True(t, m.transfersTab.adding)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, next.(model).transfersTab.adding)
}
