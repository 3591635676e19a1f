package daemon

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/1broseidon/mmpanel/internal/ipc"
	"github.com/1broseidon/mmpanel/internal/settings"
	"github.com/1broseidon/mmpanel/internal/shell"
)

// ErrDisabled is returned by queries that need an active cycle.
var ErrDisabled = errors.New("panels are disabled")

var _ ipc.Backend = (*Daemon)(nil)

// Snapshot summarizes the current state. It must run on the event loop.
func (d *Daemon) Snapshot() ipc.StatusData {
	st := ipc.StatusData{Enabled: d.enabled, Primary: -1, Indicators: []string{}}
	if p, ok := d.opts.Settings.(interface{ Path() string }); ok {
		st.SettingsPath = p.Path()
	}
	if !d.enabled {
		return st
	}
	ctx := d.ctx
	st.Monitors = len(ctx.Topology.Monitors())
	st.Primary = ctx.Topology.PrimaryIndex()
	st.Workspaces = ctx.Workspaces.Count()
	st.PanelsShown = d.reconciler.Shown()
	st.Panels = ctx.Panels.Len()
	if d.controller != nil {
		st.Transfers = len(d.controller.Records())
	}
	st.HotCorners = ctx.Host.CornerCount()
	st.Mirrors = len(d.mirrors.Mirrors())
	st.OverviewVisible = ctx.Overview.Visible()
	st.OverviewMode = string(ctx.Overview.Mode())
	st.Indicators = ctx.Host.Indicators()
	return st
}

func (d *Daemon) Reload(ctx context.Context) error {
	return d.loop.Call(ctx, d.reload)
}

func (d *Daemon) Status(ctx context.Context) (ipc.StatusData, error) {
	var st ipc.StatusData
	err := d.loop.Call(ctx, func() error {
		st = d.Snapshot()
		return nil
	})
	return st, err
}

func (d *Daemon) Monitors(ctx context.Context) ([]ipc.MonitorInfo, error) {
	out := []ipc.MonitorInfo{}
	err := d.loop.Call(ctx, func() error {
		topo := d.opts.Topology
		primary := topo.PrimaryIndex()
		for _, m := range topo.Monitors() {
			out = append(out, ipc.MonitorInfo{
				ID:      m.Index,
				Name:    m.Name,
				X:       m.Bounds.X,
				Y:       m.Bounds.Y,
				Width:   m.Bounds.Width,
				Height:  m.Bounds.Height,
				Primary: m.Index == primary,
			})
		}
		return nil
	})
	return out, err
}

func (d *Daemon) Panels(ctx context.Context) ([]ipc.PanelInfo, error) {
	out := []ipc.PanelInfo{}
	err := d.loop.Call(ctx, func() error {
		if !d.enabled {
			return nil
		}
		for _, p := range d.ctx.Panels.All() {
			b := p.Bounds()
			out = append(out, ipc.PanelInfo{
				ID:       p.ID.String(),
				Monitor:  p.MonitorIndex(),
				Identity: p.Identity().String(),
				X:        b.X,
				Y:        b.Y,
				Width:    b.Width,
				Height:   b.Height,
				Left:     p.Box(shell.BoxLeft).Names(),
				Center:   p.Box(shell.BoxCenter).Names(),
				Right:    p.Box(shell.BoxRight).Names(),
			})
		}
		return nil
	})
	return out, err
}

func (d *Daemon) Transfers(ctx context.Context) (ipc.TransfersData, error) {
	data := ipc.TransfersData{Transfers: []ipc.TransferInfo{}}
	err := d.loop.Call(ctx, func() error {
		store := d.opts.Settings
		active := map[string]string{}
		if d.controller != nil {
			for _, r := range d.controller.Records() {
				active[r.Indicator] = string(r.Box)
			}
		}
		mapping := store.Mapping(settings.KeyTransferIndicators)
		names := make([]string, 0, len(mapping))
		for name := range mapping {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			box, ok := active[name]
			data.Transfers = append(data.Transfers, ipc.TransferInfo{
				Indicator: name,
				Monitor:   mapping[name],
				Active:    ok,
				Box:       box,
			})
		}
		data.Available = store.Strings(settings.KeyAvailableIndicators)
		return nil
	})
	return data, err
}

// SetTransfer writes the mapping through the settings store; the controller
// reacts to the change notification like it does for any other writer.
func (d *Daemon) SetTransfer(ctx context.Context, indicator string, monitor int) error {
	return d.loop.Call(ctx, func() error {
		store := d.opts.Settings
		mapping := store.Mapping(settings.KeyTransferIndicators)
		mapping[indicator] = monitor
		return store.SetMapping(settings.KeyTransferIndicators, mapping)
	})
}

func (d *Daemon) RemoveTransfer(ctx context.Context, indicator string) error {
	return d.loop.Call(ctx, func() error {
		store := d.opts.Settings
		mapping := store.Mapping(settings.KeyTransferIndicators)
		if _, ok := mapping[indicator]; !ok {
			return fmt.Errorf("indicator %q is not transferred", indicator)
		}
		delete(mapping, indicator)
		return store.SetMapping(settings.KeyTransferIndicators, mapping)
	})
}

func (d *Daemon) ToggleOverview(ctx context.Context) (ipc.OverviewData, error) {
	var data ipc.OverviewData
	err := d.loop.Call(ctx, func() error {
		if !d.enabled {
			return ErrDisabled
		}
		ov := d.ctx.Overview
		ov.Toggle()
		data = ipc.OverviewData{Visible: ov.Visible(), Mode: string(ov.Mode())}
		return nil
	})
	return data, err
}
