package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/mmpanel/internal/ipc"
	"github.com/1broseidon/mmpanel/internal/settings"
)

// Daemon is what the editor asks a running daemon for. It may be nil.
type Daemon interface {
	GetMonitors() (*ipc.MonitorsData, error)
}

// model is the root bubbletea model for the TUI.
type model struct {
	store  settings.Store
	path   string
	daemon Daemon

	activeTab Tab

	generalTab   GeneralTab
	transfersTab TransfersTab

	daemonConnected bool
	monitors        []ipc.MonitorInfo

	width  int
	height int
}

func newModel(store settings.Store, path string, daemon Daemon) model {
	m := model{
		store:     store,
		path:      path,
		daemon:    daemon,
		activeTab: TabGeneral,
	}
	m.refreshDaemonStatus()

	m.generalTab = NewGeneralTab(store)
	m.transfersTab = NewTransfersTab(store, m.monitors)
	return m
}

func (m *model) refreshDaemonStatus() {
	if m.daemon == nil {
		return
	}
	data, err := m.daemon.GetMonitors()
	if err != nil {
		m.daemonConnected = false
		m.monitors = nil
		return
	}
	m.daemonConnected = true
	m.monitors = data.Monitors
}

// capturing reports whether the active tab consumes every key.
func (m model) capturing() bool {
	return (m.activeTab == TabGeneral && m.generalTab.editing) ||
		(m.activeTab == TabTransfers && m.transfersTab.adding)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.generalTab, _ = m.generalTab.Update(subMsg)
		m.transfersTab, _ = m.transfersTab.Update(subMsg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.capturing() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "tab":
				m.activeTab = (m.activeTab + 1) % tabCount
				return m, nil
			case "shift+tab":
				m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
				return m, nil
			case "1":
				m.activeTab = TabGeneral
				return m, nil
			case "2":
				m.activeTab = TabTransfers
				return m, nil
			case "r":
				m.refreshDaemonStatus()
				m.transfersTab.SetMonitors(m.monitors)
				m.transfersTab.Refresh()
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabGeneral:
		m.generalTab, cmd = m.generalTab.Update(msg)
	case TabTransfers:
		m.transfersTab, cmd = m.transfersTab.Update(msg)
	}
	return m, cmd
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.daemonConnected, len(m.monitors), m.path, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	var content string
	switch m.activeTab {
	case TabGeneral:
		content = m.generalTab.View()
	case TabTransfers:
		content = m.transfersTab.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
