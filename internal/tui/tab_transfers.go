package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/mmpanel/internal/ipc"
	"github.com/1broseidon/mmpanel/internal/settings"
)

// transferItem is one entry of the transfer mapping.
type transferItem struct {
	indicator string
	monitor   int
	known     bool // offered by the daemon in available-indicators
}

func (i transferItem) Title() string {
	mark := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓")
	if !i.known {
		mark = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("○")
	}
	return mark + " " + i.indicator
}

func (i transferItem) Description() string {
	desc := fmt.Sprintf("monitor %d", i.monitor)
	if !i.known {
		desc += " | not currently available"
	}
	return desc
}

func (i transferItem) FilterValue() string { return i.indicator }

// TransfersTab lists the transfer mapping; "a" adds an entry, "d" or "x"
// removes the selected one.
type TransfersTab struct {
	store    settings.Store
	monitors []ipc.MonitorInfo
	list     list.Model
	width    int
	height   int

	adding    bool
	form      *huh.Form
	lastError string

	fIndicator string
	fMonitor   string
}

func NewTransfersTab(store settings.Store, monitors []ipc.MonitorInfo) TransfersTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Transferred Indicators"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	t := TransfersTab{store: store, monitors: monitors, list: l}
	t.Refresh()
	return t
}

// SetMonitors replaces the monitor list offered when adding.
func (t *TransfersTab) SetMonitors(monitors []ipc.MonitorInfo) {
	t.monitors = monitors
}

// Refresh rebuilds the list from the store.
func (t *TransfersTab) Refresh() {
	t.list.SetItems(buildTransferItems(t.store))
}

func buildTransferItems(store settings.Store) []list.Item {
	mapping := store.Mapping(settings.KeyTransferIndicators)
	available := map[string]bool{}
	for _, name := range store.Strings(settings.KeyAvailableIndicators) {
		available[name] = true
	}
	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		items = append(items, transferItem{indicator: name, monitor: mapping[name], known: available[name]})
	}
	return items
}

// Update handles messages for the transfers tab.
func (t TransfersTab) Update(msg tea.Msg) (TransfersTab, tea.Cmd) {
	if t.adding {
		return t.updateAdding(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.listWidth(), t.height)
		return t, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			t.startAdding()
			return t, t.form.Init()
		case "d", "x", "delete":
			if item, ok := t.list.SelectedItem().(transferItem); ok {
				t.remove(item.indicator)
			}
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t TransfersTab) updateAdding(msg tea.Msg) (TransfersTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		t.adding = false
		t.form = nil
		return t, nil
	}
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		t.width = ws.Width
		t.height = ws.Height
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}
	if t.form.State == huh.StateCompleted {
		monitor, _ := strconv.Atoi(strings.TrimSpace(t.fMonitor))
		t.add(strings.TrimSpace(t.fIndicator), monitor)
		t.adding = false
		t.form = nil
		return t, nil
	}
	return t, cmd
}

func (t *TransfersTab) startAdding() {
	t.fIndicator = ""
	t.fMonitor = ""

	var indicatorField huh.Field
	if available := t.store.Strings(settings.KeyAvailableIndicators); len(available) > 0 {
		indicatorField = huh.NewSelect[string]().
			Key("indicator").
			Title("Indicator").
			Description("Indicators currently on the primary panel").
			Options(huh.NewOptions(available...)...).
			Value(&t.fIndicator)
	} else {
		indicatorField = huh.NewInput().
			Key("indicator").
			Title("Indicator").
			Description("No indicators published yet; enter a name").
			Validate(nonEmpty).
			Value(&t.fIndicator)
	}

	monitorField := huh.NewInput().
		Key("monitor").
		Title("Monitor").
		Description(t.monitorHint()).
		Validate(t.validateMonitor).
		Value(&t.fMonitor)

	w := t.width - 4
	if w < 40 {
		w = 40
	}
	t.form = huh.NewForm(huh.NewGroup(indicatorField, monitorField)).
		WithWidth(w).WithShowHelp(true).WithShowErrors(true)
	t.adding = true
}

func (t TransfersTab) monitorHint() string {
	if len(t.monitors) == 0 {
		return "Monitor index (daemon not running)"
	}
	var parts []string
	for _, m := range t.monitors {
		if m.Primary {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d=%s", m.ID, m.Name))
	}
	return "Monitor index: " + strings.Join(parts, ", ")
}

func nonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

// validateMonitor accepts any non-negative index when the daemon is not
// reachable, otherwise only secondary monitors.
func (t TransfersTab) validateMonitor(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a monitor index")
	}
	if len(t.monitors) == 0 {
		return nil
	}
	for _, m := range t.monitors {
		if m.ID == n {
			if m.Primary {
				return fmt.Errorf("monitor %d is the primary monitor", n)
			}
			return nil
		}
	}
	return fmt.Errorf("no monitor %d", n)
}

func (t *TransfersTab) add(indicator string, monitor int) {
	if indicator == "" {
		return
	}
	mapping := t.store.Mapping(settings.KeyTransferIndicators)
	mapping[indicator] = monitor
	t.write(mapping)
}

func (t *TransfersTab) remove(indicator string) {
	mapping := t.store.Mapping(settings.KeyTransferIndicators)
	if _, ok := mapping[indicator]; !ok {
		return
	}
	delete(mapping, indicator)
	t.write(mapping)
}

func (t *TransfersTab) write(mapping map[string]int) {
	t.lastError = ""
	if err := t.store.SetMapping(settings.KeyTransferIndicators, mapping); err != nil {
		t.lastError = err.Error()
	}
	t.Refresh()
}

func (t TransfersTab) listWidth() int {
	w := t.width * 2 / 5
	if w < 20 {
		w = 20
	}
	return w
}

// View implements tea.Model.
func (t TransfersTab) View() string {
	if t.width == 0 || t.height == 0 {
		return ""
	}

	if t.adding && t.form != nil {
		header := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Transfer Indicator") +
			dimStyle.Render("  (esc to cancel)")
		return lipgloss.NewStyle().
			Width(t.width).
			Height(t.height).
			Padding(1, 2).
			Render(header + "\n\n" + t.form.View())
	}

	leftWidth := t.listWidth()
	rightWidth := t.width - leftWidth
	if rightWidth < 10 {
		rightWidth = 10
	}

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(t.height).
		Render(t.list.View())

	var b strings.Builder
	if item, ok := t.list.SelectedItem().(transferItem); ok {
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Render(item.indicator))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("target monitor: %d\n", item.monitor))
		if !item.known {
			b.WriteString(dimStyle.Render("stays on the primary panel until it appears\n"))
		}
	} else {
		b.WriteString(dimStyle.Render("No indicators transferred"))
	}
	b.WriteString("\n")
	if t.lastError != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(t.lastError))
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).Render("a: add  d/x: remove"))

	right := lipgloss.NewStyle().
		Width(rightWidth).
		Height(t.height).
		Padding(1, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(lipgloss.Color("236")).
		Render(b.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}
