package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"github.com/1broseidon/mmpanel/internal/ipc"
)

// printer renders command results as a table on a terminal, as borderless
// columns when piped, or as JSON.
type printer struct {
	out  io.Writer
	tty  bool
	json bool
}

func newPrinter(asJSON bool) *printer {
	return &printer{
		out:  os.Stdout,
		tty:  term.IsTerminal(int(os.Stdout.Fd())),
		json: asJSON,
	}
}

func (p *printer) table() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	if p.tty {
		t.SetStyle(table.StyleRounded)
		t.Style().Color.Header = text.Colors{text.FgHiCyan, text.Bold}
	} else {
		t.SetStyle(table.StyleDefault)
		t.Style().Options = table.OptionsNoBordersAndSeparators
		t.Style().Format.Header = text.FormatUpper
	}
	return t
}

func (p *printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) status(s *ipc.StatusData) error {
	if p.json {
		return p.writeJSON(s)
	}
	t := p.table()
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"daemon", onOff(s.DaemonRunning, "running", "stopped")},
		{"panels", onOff(s.Enabled, "enabled", "disabled")},
		{"uptime", uptime(s.UptimeSeconds)},
		{"monitors", fmt.Sprintf("%d (primary %d)", s.Monitors, s.Primary)},
		{"workspaces", s.Workspaces},
		{"panel count", fmt.Sprintf("%d %s", s.Panels, onOff(s.PanelsShown, "shown", "hidden"))},
		{"transfers", s.Transfers},
		{"hot corners", s.HotCorners},
		{"thumbnail mirrors", s.Mirrors},
		{"overview", overviewState(s.OverviewVisible, s.OverviewMode)},
		{"indicators", listOrDash(s.Indicators)},
	})
	if s.SettingsPath != "" {
		t.AppendRow(table.Row{"settings", s.SettingsPath})
	}
	t.Render()
	return nil
}

func (p *printer) monitors(data *ipc.MonitorsData) error {
	if p.json {
		return p.writeJSON(data)
	}
	t := p.table()
	t.AppendHeader(table.Row{"ID", "Name", "Geometry", "Primary"})
	for _, m := range data.Monitors {
		primary := ""
		if m.Primary {
			primary = "yes"
		}
		t.AppendRow(table.Row{m.ID, m.Name, fmt.Sprintf("%dx%d+%d+%d", m.Width, m.Height, m.X, m.Y), primary})
	}
	t.Render()
	return nil
}

func (p *printer) panels(data *ipc.PanelsData) error {
	if p.json {
		return p.writeJSON(data)
	}
	t := p.table()
	t.AppendHeader(table.Row{"Monitor", "Identity", "Geometry", "Left", "Center", "Right"})
	for _, panel := range data.Panels {
		t.AppendRow(table.Row{
			panel.Monitor,
			panel.Identity,
			fmt.Sprintf("%dx%d+%d+%d", panel.Width, panel.Height, panel.X, panel.Y),
			listOrDash(panel.Left),
			listOrDash(panel.Center),
			listOrDash(panel.Right),
		})
	}
	t.Render()
	return nil
}

func (p *printer) transfers(data *ipc.TransfersData) error {
	if p.json {
		return p.writeJSON(data)
	}
	t := p.table()
	t.AppendHeader(table.Row{"Indicator", "Monitor", "State"})
	for _, tr := range data.Transfers {
		state := "waiting"
		if tr.Active {
			state = "on " + tr.Box
		}
		t.AppendRow(table.Row{tr.Indicator, tr.Monitor, state})
	}
	t.Render()
	if len(data.Available) > 0 {
		fmt.Fprintf(p.out, "available: %s\n", strings.Join(data.Available, ", "))
	}
	return nil
}

func (p *printer) keyValues(rows [][2]string) error {
	if p.json {
		m := make(map[string]string, len(rows))
		for _, r := range rows {
			m[r[0]] = r[1]
		}
		return p.writeJSON(m)
	}
	t := p.table()
	t.AppendHeader(table.Row{"Key", "Value"})
	for _, r := range rows {
		t.AppendRow(table.Row{r[0], r[1]})
	}
	t.Render()
	return nil
}

func uptime(seconds int64) string {
	if seconds <= 0 {
		return "-"
	}
	started := time.Now().Add(-time.Duration(seconds) * time.Second)
	return strconv.FormatInt(seconds, 10) + "s (started " + humanize.Time(started) + ")"
}

func overviewState(visible bool, mode string) string {
	if !visible {
		return "hidden"
	}
	if mode == "" {
		return "visible"
	}
	return "visible (" + mode + ")"
}

func onOff(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
