package shell

import (
	"fmt"
	"sort"

	"github.com/1broseidon/mmpanel/internal/platform"
	"github.com/1broseidon/mmpanel/internal/settings"
	"github.com/1broseidon/mmpanel/internal/ui"
)

// CornerStrategy rebuilds the hot corners on behalf of the host.
type CornerStrategy func()

// Host is the primary panel plus the hot-corner entry point of the shell.
type Host struct {
	ctx        *Context
	boxes      Boxes
	statusArea map[string]*ui.Actor
	surface    ui.Surface

	corners  []ui.Corner
	strategy CornerStrategy

	indicatorsChanged map[int]func()
	nextListener      int
}

// NewHost creates the primary panel with the built-in indicators.
func NewHost(ctx *Context) (*Host, error) {
	h := &Host{
		ctx:               ctx,
		boxes:             newBoxes("primary"),
		statusArea:        make(map[string]*ui.Actor),
		indicatorsChanged: make(map[int]func()),
	}
	if _, err := h.AddIndicator(IndicatorActivities, BoxLeft, 0); err != nil {
		return nil, err
	}
	if _, err := h.AddIndicator(IndicatorDateTime, BoxCenter, 0); err != nil {
		return nil, err
	}
	return h, nil
}

// Realize creates the primary panel surface on the primary monitor.
func (h *Host) Realize() error {
	if h.surface != nil {
		return nil
	}
	m, ok := h.primaryMonitor()
	if !ok {
		return fmt.Errorf("no primary monitor")
	}
	s, err := h.ctx.Surfaces.CreateSurface(ui.SurfaceSpec{
		Role:    "primary",
		Monitor: m.Index,
		Bounds:  PanelBounds(m.Bounds, h.ctx.Config.PanelHeight, settings.PositionTop),
		Edge:    ui.EdgeTop,
		Strut:   true,
		Visible: true,
	})
	if err != nil {
		return fmt.Errorf("primary panel surface: %w", err)
	}
	h.surface = s
	return nil
}

// Relayout follows the primary monitor after a topology change.
func (h *Host) Relayout() error {
	if h.surface == nil {
		return nil
	}
	m, ok := h.primaryMonitor()
	if !ok {
		return nil
	}
	return h.surface.Reposition(PanelBounds(m.Bounds, h.ctx.Config.PanelHeight, settings.PositionTop), ui.EdgeTop)
}

// Unrealize destroys the primary panel surface and the hot corners.
func (h *Host) Unrealize() {
	h.destroyCorners()
	if h.surface != nil {
		_ = h.surface.Destroy()
		h.surface = nil
	}
}

func (h *Host) primaryMonitor() (platform.Monitor, bool) {
	return platform.Find(h.ctx.Topology.Monitors(), h.ctx.Topology.PrimaryIndex())
}

// Box returns one of the primary panel boxes.
func (h *Host) Box(role BoxRole) *ui.Box {
	return h.boxes.Box(role)
}

func (h *Host) Boxes() Boxes {
	return h.boxes
}

// StatusArea returns the indicator container registered under name. The
// container may currently be parented to another panel.
func (h *Host) StatusArea(name string) (*ui.Actor, bool) {
	a, ok := h.statusArea[name]
	return a, ok
}

// Indicators returns the registered indicator names, sorted.
func (h *Host) Indicators() []string {
	names := make([]string, 0, len(h.statusArea))
	for name := range h.statusArea {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddIndicator registers name and inserts its container into a primary box.
func (h *Host) AddIndicator(name string, role BoxRole, index int) (*ui.Actor, error) {
	if _, ok := h.statusArea[name]; ok {
		return nil, fmt.Errorf("indicator %q already registered", name)
	}
	box := h.boxes.Box(role)
	if box == nil {
		return nil, fmt.Errorf("indicator %q: unknown box %q", name, role)
	}
	a := ui.NewActor(name)
	if err := box.InsertChildAt(a, index); err != nil {
		return nil, err
	}
	h.statusArea[name] = a
	h.emitIndicatorsChanged()
	return a, nil
}

// RemoveIndicator unregisters name and detaches its container wherever it is.
func (h *Host) RemoveIndicator(name string) bool {
	a, ok := h.statusArea[name]
	if !ok {
		return false
	}
	a.Detach()
	delete(h.statusArea, name)
	h.emitIndicatorsChanged()
	return true
}

// OnIndicatorsChanged subscribes to AddIndicator and RemoveIndicator.
func (h *Host) OnIndicatorsChanged(fn func()) (cancel func()) {
	id := h.nextListener
	h.nextListener++
	h.indicatorsChanged[id] = fn
	return func() { delete(h.indicatorsChanged, id) }
}

func (h *Host) emitIndicatorsChanged() {
	for id := 0; id < h.nextListener; id++ {
		if fn, ok := h.indicatorsChanged[id]; ok {
			fn()
		}
	}
}

// SetCornerStrategy makes UpdateHotCorners delegate to s.
func (h *Host) SetCornerStrategy(s CornerStrategy) {
	h.strategy = s
}

// ClearCornerStrategy restores the default corner layout on the next update.
func (h *Host) ClearCornerStrategy() {
	h.strategy = nil
}

// HasCornerStrategy reports whether a strategy is installed.
func (h *Host) HasCornerStrategy() bool {
	return h.strategy != nil
}

// UpdateHotCorners rebuilds the hot corners using the installed strategy, or
// a single corner on the primary monitor when enable-hot-corners is set.
func (h *Host) UpdateHotCorners() {
	if h.strategy != nil {
		h.strategy()
		return
	}
	h.destroyCorners()
	if !h.ctx.Settings.Bool(settings.KeyEnableHotCorners) {
		return
	}
	m, ok := h.primaryMonitor()
	if !ok {
		return
	}
	x := m.Bounds.X
	if h.ctx.Config.RTL {
		x = m.Bounds.Right()
	}
	c, err := h.ctx.Corners.CreateCorner(ui.CornerSpec{
		Monitor:     m.Index,
		X:           x,
		Y:           m.Bounds.Y,
		BarrierSize: h.ctx.Config.PanelHeight,
	}, h.ToggleOverview)
	if err != nil {
		h.ctx.Logger.Warn("failed to create hot corner", "monitor", m.Index, "error", err)
		return
	}
	h.corners = append(h.corners, c)
}

// ToggleOverview is the hot-corner trigger. Corner events arrive on the
// display goroutine.
func (h *Host) ToggleOverview() {
	h.ctx.Dispatch(h.ctx.Overview.Toggle)
}

// ReplaceCorners destroys the current corners and adopts cs.
func (h *Host) ReplaceCorners(cs []ui.Corner) {
	h.destroyCorners()
	h.corners = cs
}

// CornerCount returns the number of live hot corners.
func (h *Host) CornerCount() int {
	return len(h.corners)
}

func (h *Host) destroyCorners() {
	for _, c := range h.corners {
		if err := c.Destroy(); err != nil {
			h.ctx.Logger.Debug("failed to destroy hot corner", "error", err)
		}
	}
	h.corners = nil
}
