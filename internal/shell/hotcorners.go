package shell

import (
	"github.com/1broseidon/mmpanel/internal/settings"
	"github.com/1broseidon/mmpanel/internal/ui"
)

// HotCornerReconfigurer replaces the host's corner layout with one corner
// per monitor while installed.
type HotCornerReconfigurer struct {
	ctx       *Context
	handlerID settings.HandlerID
	installed bool
}

func NewHotCornerReconfigurer(ctx *Context) *HotCornerReconfigurer {
	return &HotCornerReconfigurer{ctx: ctx}
}

// Install registers the strategy with the host and rebuilds the corners.
func (h *HotCornerReconfigurer) Install() {
	if h.installed {
		return
	}
	h.installed = true
	h.ctx.Host.SetCornerStrategy(h.rebuild)
	h.handlerID = h.ctx.Settings.OnChanged(settings.KeyEnableHotCorners, func(string) {
		h.ctx.Host.UpdateHotCorners()
	})
	h.ctx.Host.UpdateHotCorners()
}

// Uninstall hands corner layout back to the host and lets it rebuild once.
func (h *HotCornerReconfigurer) Uninstall() {
	if !h.installed {
		return
	}
	h.installed = false
	h.ctx.Settings.Disconnect(h.handlerID)
	h.ctx.Host.ClearCornerStrategy()
	h.ctx.Host.UpdateHotCorners()
}

func (h *HotCornerReconfigurer) Installed() bool {
	return h.installed
}

func (h *HotCornerReconfigurer) rebuild() {
	host := h.ctx.Host
	host.ReplaceCorners(nil)
	if !h.ctx.Settings.Bool(settings.KeyEnableHotCorners) {
		return
	}

	size := h.ctx.Config.PanelHeight
	var corners []ui.Corner
	for _, m := range h.ctx.Topology.Monitors() {
		x := m.Bounds.X
		if h.ctx.Config.RTL {
			x = m.Bounds.Right()
		}
		c, err := h.ctx.Corners.CreateCorner(ui.CornerSpec{
			Monitor:     m.Index,
			X:           x,
			Y:           m.Bounds.Y,
			BarrierSize: size,
		}, host.ToggleOverview)
		if err != nil {
			h.ctx.Logger.Warn("failed to create hot corner", "monitor", m.Index, "error", err)
			continue
		}
		corners = append(corners, c)
	}
	host.ReplaceCorners(corners)
	h.ctx.Logger.Debug("hot corners rebuilt", "count", len(corners))
}
