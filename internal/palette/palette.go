// Package palette asks the user to pick from a short list through an external
// dmenu-style launcher.
package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the launcher closes without a selection.
var ErrCancelled = errors.New("palette cancelled")

// Item is one row of a menu.
type Item struct {
	Label  string
	Value  string // returned to the caller, never shown
	Active bool   // highlighted as the current choice
	Header bool   // not selectable
}

// Backend shows a menu and returns the chosen item.
type Backend interface {
	Choose(prompt string, items []Item) (Item, error)
}

// Backends lists the supported launchers in detection order.
var Backends = []string{"rofi", "fuzzel", "dmenu"}

// Detect returns the first supported launcher found in PATH.
func Detect() (string, error) {
	for _, name := range Backends {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no launcher found in PATH (looked for: %s)", strings.Join(Backends, ", "))
}

// New returns the launcher called name; "" or "auto" detects one.
func New(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := Detect()
		if err != nil {
			return nil, err
		}
		name = detected
	}
	l, err := newLauncher(name)
	if err != nil {
		return nil, err
	}
	if _, err := exec.LookPath(l.command); err != nil {
		return nil, fmt.Errorf("launcher %q not found in PATH", l.command)
	}
	return l, nil
}
