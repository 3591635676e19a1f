// Package shell holds the shared runtime state of the panels: the primary
// panel owned by the host, the per-monitor panels and the overview state.
package shell

import (
	"io"
	"log/slog"

	"github.com/1broseidon/mmpanel/internal/config"
	"github.com/1broseidon/mmpanel/internal/platform"
	"github.com/1broseidon/mmpanel/internal/settings"
	"github.com/1broseidon/mmpanel/internal/ui"
)

// Context is constructed once per enable cycle and handed to every component.
type Context struct {
	Settings   settings.Store
	Topology   platform.Topology
	Workspaces platform.Workspaces
	Surfaces   ui.SurfaceFactory
	Corners    ui.CornerFactory
	Config     *config.Config
	Logger     *slog.Logger

	// Dispatch runs fn on the event loop. Topology and registry callbacks
	// arrive on foreign goroutines and must go through it.
	Dispatch func(fn func())

	Host     *Host
	Overview *Overview
	Panels   *PanelRegistry
}

// Options configures NewContext. Nil fields get in-memory defaults.
type Options struct {
	Settings   settings.Store
	Topology   platform.Topology
	Workspaces platform.Workspaces
	Surfaces   ui.SurfaceFactory
	Corners    ui.CornerFactory
	Config     *config.Config
	Logger     *slog.Logger
	Dispatch   func(fn func())
}

// NewContext builds the shared context and the host shell.
func NewContext(opts Options) (*Context, error) {
	ctx := &Context{
		Settings:   opts.Settings,
		Topology:   opts.Topology,
		Workspaces: opts.Workspaces,
		Surfaces:   opts.Surfaces,
		Corners:    opts.Corners,
		Config:     opts.Config,
		Logger:     opts.Logger,
		Dispatch:   opts.Dispatch,
		Overview:   NewOverview(),
		Panels:     &PanelRegistry{},
	}
	if ctx.Settings == nil {
		ctx.Settings = settings.NewMemory()
	}
	if ctx.Topology == nil {
		ctx.Topology = platform.NewStaticTopology(0, platform.Rect{Width: 1920, Height: 1080})
	}
	if ctx.Workspaces == nil {
		ctx.Workspaces = platform.NewStaticWorkspaces(1)
	}
	if ctx.Surfaces == nil || ctx.Corners == nil {
		mem := ui.NewMemorySurfaces()
		if ctx.Surfaces == nil {
			ctx.Surfaces = mem
		}
		if ctx.Corners == nil {
			ctx.Corners = mem
		}
	}
	if ctx.Config == nil {
		ctx.Config = config.DefaultConfig()
	}
	if ctx.Logger == nil {
		ctx.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if ctx.Dispatch == nil {
		ctx.Dispatch = func(fn func()) { fn() }
	}

	host, err := NewHost(ctx)
	if err != nil {
		return nil, err
	}
	ctx.Host = host
	return ctx, nil
}

// PanelRegistry is the read-only view of the live per-monitor panels. Only
// the PanelReconciler mutates it.
type PanelRegistry struct {
	panels []*Panel
}

// Find returns the panel placed on monitor.
func (r *PanelRegistry) Find(monitor int) (*Panel, bool) {
	for _, p := range r.panels {
		if p.MonitorIndex() == monitor {
			return p, true
		}
	}
	return nil, false
}

// All returns the panels in slot order.
func (r *PanelRegistry) All() []*Panel {
	out := make([]*Panel, len(r.panels))
	copy(out, r.panels)
	return out
}

func (r *PanelRegistry) Len() int {
	return len(r.panels)
}

func (r *PanelRegistry) add(p *Panel) {
	r.panels = append(r.panels, p)
}

func (r *PanelRegistry) remove(p *Panel) {
	for i, q := range r.panels {
		if q == p {
			r.panels = append(r.panels[:i], r.panels[i+1:]...)
			return
		}
	}
}
