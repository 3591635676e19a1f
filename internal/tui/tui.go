// Package tui is the interactive preferences editor. It edits the settings
// file directly; a running daemon picks changes up through its file watch.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/mmpanel/internal/ipc"
	"github.com/1broseidon/mmpanel/internal/settings"
)

// Run opens the settings file at path and starts the editor.
func Run(path string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("prefs requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	store, err := settings.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}

	m := newModel(store, path, ipc.NewClient())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}
	return nil
}
