package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/mmpanel/internal/settings"
)

// GeneralTab shows and edits the boolean and enum preferences.
type GeneralTab struct {
	store settings.Store

	width  int
	height int

	editing   bool
	form      *huh.Form
	lastError string

	// Form-bound values
	fShowPanel      bool
	fPosition       string
	fHotCorners     bool
	fSlider         string
	fShowActivities bool
	fShowDateTime   bool
	fShowIndicator  bool
	fOnlyPrimary    bool
}

func NewGeneralTab(store settings.Store) GeneralTab {
	return GeneralTab{store: store}
}

// Update implements tea.Model.
func (g GeneralTab) Update(msg tea.Msg) (GeneralTab, tea.Cmd) {
	if g.editing {
		return g.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			g.startEditing()
			return g, g.form.Init()
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}
	return g, nil
}

func (g GeneralTab) updateEditing(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			g.editing = false
			g.form = nil
			return g, nil
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.applyForm()
		g.editing = false
		g.form = nil
		return g, nil
	}
	return g, cmd
}

func (g *GeneralTab) loadForm() {
	s := g.store
	g.fShowPanel = s.Bool(settings.KeyShowPanel)
	g.fPosition = s.String(settings.KeyPanelPosition)
	g.fHotCorners = s.Bool(settings.KeyEnableHotCorners)
	g.fSlider = s.String(settings.KeyThumbnailsSlider)
	g.fShowActivities = s.Bool(settings.KeyShowActivities)
	g.fShowDateTime = s.Bool(settings.KeyShowDateTime)
	g.fShowIndicator = s.Bool(settings.KeyShowIndicator)
	g.fOnlyPrimary = s.Bool(settings.KeyWorkspacesOnlyOnPrimary)
}

func (g *GeneralTab) startEditing() {
	g.loadForm()

	w := g.width - 4
	if w < 40 {
		w = 40
	}

	g.form = huh.NewForm(
		huh.NewGroup(
			confirm(settings.KeyShowPanel, "Show Panels", &g.fShowPanel),
			choice(settings.KeyPanelPosition, "Panel Position", &g.fPosition),
			confirm(settings.KeyEnableHotCorners, "Hot Corners", &g.fHotCorners),
			confirm(settings.KeyShowActivities, "Activities Button", &g.fShowActivities),
			confirm(settings.KeyShowDateTime, "Clock", &g.fShowDateTime),
		),
		huh.NewGroup(
			choice(settings.KeyThumbnailsSlider, "Thumbnails Slider", &g.fSlider),
			confirm(settings.KeyWorkspacesOnlyOnPrimary, "Workspaces Only On Primary", &g.fOnlyPrimary),
			confirm(settings.KeyShowIndicator, "Panel Indicator", &g.fShowIndicator),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	g.editing = true
}

func confirm(key, title string, v *bool) *huh.Confirm {
	k, _ := settings.Lookup(key)
	return huh.NewConfirm().
		Key(key).
		Title(title).
		Description(k.Summary).
		Affirmative("On").
		Negative("Off").
		Value(v)
}

func choice(key, title string, v *string) *huh.Select[string] {
	k, _ := settings.Lookup(key)
	return huh.NewSelect[string]().
		Key(key).
		Title(title).
		Description(k.Summary).
		Options(huh.NewOptions(k.Choices...)...).
		Value(v)
}

// applyForm writes every field that differs from the store.
func (g *GeneralTab) applyForm() {
	s := g.store
	var errs []string
	setBool := func(key string, v bool) {
		if s.Bool(key) == v {
			return
		}
		if err := s.SetBool(key, v); err != nil {
			errs = append(errs, err.Error())
		}
	}
	setString := func(key, v string) {
		if s.String(key) == v {
			return
		}
		if err := s.SetString(key, v); err != nil {
			errs = append(errs, err.Error())
		}
	}

	setBool(settings.KeyShowPanel, g.fShowPanel)
	setString(settings.KeyPanelPosition, g.fPosition)
	setBool(settings.KeyEnableHotCorners, g.fHotCorners)
	setBool(settings.KeyShowActivities, g.fShowActivities)
	setBool(settings.KeyShowDateTime, g.fShowDateTime)
	setBool(settings.KeyShowIndicator, g.fShowIndicator)
	setBool(settings.KeyWorkspacesOnlyOnPrimary, g.fOnlyPrimary)
	setString(settings.KeyThumbnailsSlider, g.fSlider)

	g.lastError = strings.Join(errs, "; ")
}

// View implements tea.Model.
func (g GeneralTab) View() string {
	if g.editing && g.form != nil {
		return g.viewEditing()
	}
	return g.viewDisplay()
}

func (g GeneralTab) viewDisplay() string {
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(30).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	lines := []string{""}
	for _, k := range settings.Schema() {
		if k.Kind != settings.KindBool && k.Kind != settings.KindString {
			continue
		}
		var value string
		if k.Kind == settings.KindBool {
			value = strconv.FormatBool(g.store.Bool(k.Name))
		} else {
			value = g.store.String(k.Name)
		}
		lines = append(lines, labelStyle.Render(k.Name)+valueStyle.Render(value))
	}
	lines = append(lines, "")
	if g.lastError != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("  "+g.lastError), "")
	}
	lines = append(lines, dimStyle.Render("  Press 'e' to edit settings"))

	return lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (g GeneralTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing General Settings") +
		dimStyle.Render("  (esc to cancel)")

	return lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2).
		Render(header + "\n\n" + g.form.View())
}
