package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

type launcherKind int

const (
	kindRofi launcherKind = iota
	kindFuzzel
	kindDmenu
)

// runFunc executes the launcher with stdin and returns its stdout.
type runFunc func(command string, args []string, stdin string) ([]byte, error)

type launcher struct {
	command string
	kind    launcherKind
	run     runFunc
}

func newLauncher(name string) (*launcher, error) {
	l := &launcher{command: name, run: execRun}
	switch name {
	case "rofi":
		l.kind = kindRofi
	case "fuzzel":
		l.kind = kindFuzzel
	case "dmenu":
		l.kind = kindDmenu
	default:
		return nil, fmt.Errorf("unknown launcher %q (expected: auto, %s)", name, strings.Join(Backends, ", "))
	}
	return l, nil
}

func execRun(command string, args []string, stdin string) ([]byte, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil && !isCancelExit(err) {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s failed: %s", command, msg)
		}
		return out, fmt.Errorf("%s failed: %w", command, err)
	}
	return out, err
}

// indexOutput reports whether the launcher prints the row index instead of
// the row text.
func (l *launcher) indexOutput() bool {
	return l.kind == kindRofi || l.kind == kindFuzzel
}

func (l *launcher) Choose(prompt string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: nothing to choose from")
	}
	rows := make([]Item, len(items))
	copy(rows, items)
	if !l.indexOutput() {
		disambiguate(rows)
	}

	out, err := l.run(l.command, l.args(prompt, rows), l.input(rows))
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		return Item{}, err
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return l.parse(selection, rows)
}

func (l *launcher) args(prompt string, rows []Item) []string {
	var args []string
	switch l.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		var active []string
		selected := -1
		for i, r := range rows {
			if r.Header {
				continue
			}
			if r.Active {
				active = append(active, strconv.Itoa(i))
				if selected < 0 {
					selected = i
				}
			}
		}
		if len(active) > 0 {
			args = append(args, "-a", strings.Join(active, ","))
		}
		if selected >= 0 {
			args = append(args, "-selected-row", strconv.Itoa(selected))
		}
	case kindFuzzel:
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case kindDmenu:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

func (l *launcher) input(rows []Item) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		label := clean(r.Label)
		if l.kind != kindRofi {
			lines[i] = label
			continue
		}
		label = html.EscapeString(label)
		if r.Header {
			// Rofi row options follow a single NUL and are separated by 0x1f.
			label = "<b>" + label + "</b>\x00nonselectable\x1ftrue"
		}
		lines[i] = label
	}
	return strings.Join(lines, "\n")
}

func (l *launcher) parse(selection string, rows []Item) (Item, error) {
	if l.indexOutput() {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(rows) || rows[idx].Header {
				return Item{}, fmt.Errorf("palette: row %d is not selectable", idx)
			}
			return rows[idx], nil
		}
	}
	for _, r := range rows {
		if !r.Header && clean(r.Label) == selection {
			return r, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

// disambiguate suffixes repeated labels for launchers that answer with text.
func disambiguate(rows []Item) {
	seen := map[string]int{}
	for i := range rows {
		if rows[i].Header {
			continue
		}
		key := clean(rows[i].Label)
		if n := seen[key]; n > 0 {
			rows[i].Label = fmt.Sprintf("%s (%d)", key, n+1)
		}
		seen[key]++
	}
}

func clean(label string) string {
	label = strings.ReplaceAll(label, "\x00", " ")
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 is "no selection", 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	}
	return false
}
