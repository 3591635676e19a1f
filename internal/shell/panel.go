package shell

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/1broseidon/mmpanel/internal/platform"
	"github.com/1broseidon/mmpanel/internal/settings"
	"github.com/1broseidon/mmpanel/internal/ui"
)

// BoxRole names one of the three placement boxes of a panel.
type BoxRole string

const (
	BoxLeft   BoxRole = "left"
	BoxCenter BoxRole = "center"
	BoxRight  BoxRole = "right"
)

// BoxRoles lists the boxes in leading-to-trailing order.
var BoxRoles = []BoxRole{BoxLeft, BoxCenter, BoxRight}

// Built-in indicator names.
const (
	IndicatorActivities = "activities"
	IndicatorDateTime   = "date-time"
	IndicatorSelf       = "mmpanel"
)

// Boxes holds the leading, centered and trailing boxes of a panel.
type Boxes struct {
	Left   *ui.Box
	Center *ui.Box
	Right  *ui.Box
}

func newBoxes(prefix string) Boxes {
	return Boxes{
		Left:   ui.NewBox(prefix + "Left"),
		Center: ui.NewBox(prefix + "Center"),
		Right:  ui.NewBox(prefix + "Right"),
	}
}

// Box returns the box for role, or nil.
func (b Boxes) Box(role BoxRole) *ui.Box {
	switch role {
	case BoxLeft:
		return b.Left
	case BoxCenter:
		return b.Center
	case BoxRight:
		return b.Right
	default:
		return nil
	}
}

// PanelBounds places a panel of the given height along one edge of monitor.
func PanelBounds(monitor platform.Rect, height int, position string) platform.Rect {
	if height > monitor.Height {
		height = monitor.Height
	}
	y := monitor.Y
	if position == settings.PositionBottom {
		y = monitor.Bottom() - height
	}
	return platform.Rect{X: monitor.X, Y: y, Width: monitor.Width, Height: height}
}

func edgeFor(position string) ui.Edge {
	if position == settings.PositionBottom {
		return ui.EdgeBottom
	}
	return ui.EdgeTop
}

// Panel is the logical panel of one non-primary monitor.
type Panel struct {
	ID ulid.ULID

	ctx        *Context
	monitor    int
	identity   platform.Identity
	bounds     platform.Rect
	boxes      Boxes
	statusArea map[string]*ui.Actor
	surface    ui.Surface
	handlers   []settings.HandlerID
	destroyed  bool
}

func newPanel(ctx *Context, m platform.Monitor) (*Panel, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("panel id: %w", err)
	}

	position := ctx.Settings.String(settings.KeyPanelPosition)
	bounds := PanelBounds(m.Bounds, ctx.Config.PanelHeight, position)
	surface, err := ctx.Surfaces.CreateSurface(ui.SurfaceSpec{
		Role:    "panel",
		Monitor: m.Index,
		Bounds:  bounds,
		Edge:    edgeFor(position),
		Strut:   true,
		Visible: true,
	})
	if err != nil {
		return nil, fmt.Errorf("panel surface for monitor %d: %w", m.Index, err)
	}

	p := &Panel{
		ID:         id,
		ctx:        ctx,
		monitor:    m.Index,
		identity:   m.Identity(),
		bounds:     m.Bounds,
		boxes:      newBoxes("panel"),
		statusArea: make(map[string]*ui.Actor),
		surface:    surface,
	}

	// Per-panel replacements for the primary activities button and clock.
	p.addIndicator(IndicatorActivities, BoxLeft)
	p.addIndicator(IndicatorDateTime, BoxCenter)

	p.handlers = append(p.handlers,
		ctx.Settings.OnChanged(settings.KeyShowActivities, func(string) { p.syncVisibility() }),
		ctx.Settings.OnChanged(settings.KeyShowDateTime, func(string) { p.syncVisibility() }),
	)
	p.syncVisibility()
	return p, nil
}

func (p *Panel) addIndicator(name string, role BoxRole) {
	a := ui.NewActor(name)
	_ = p.boxes.Box(role).AddChild(a)
	p.statusArea[name] = a
}

func (p *Panel) syncVisibility() {
	if a, ok := p.statusArea[IndicatorActivities]; ok {
		a.SetVisible(p.ctx.Settings.Bool(settings.KeyShowActivities))
	}
	if a, ok := p.statusArea[IndicatorDateTime]; ok {
		a.SetVisible(p.ctx.Settings.Bool(settings.KeyShowDateTime))
	}
}

// MonitorIndex is the monitor the panel is placed on.
func (p *Panel) MonitorIndex() int {
	return p.monitor
}

func (p *Panel) Identity() platform.Identity {
	return p.identity
}

// Bounds returns the monitor geometry the panel tracks.
func (p *Panel) Bounds() platform.Rect {
	return p.bounds
}

// Box returns one of the panel's placement boxes.
func (p *Panel) Box(role BoxRole) *ui.Box {
	return p.boxes.Box(role)
}

func (p *Panel) Boxes() Boxes {
	return p.boxes
}

// StatusArea returns the panel's own indicator called name.
func (p *Panel) StatusArea(name string) (*ui.Actor, bool) {
	a, ok := p.statusArea[name]
	return a, ok
}

// update moves the panel to a changed monitor slot. The panel itself is kept.
func (p *Panel) update(m platform.Monitor) error {
	p.monitor = m.Index
	p.identity = m.Identity()
	p.bounds = m.Bounds
	return p.relayout()
}

func (p *Panel) relayout() error {
	position := p.ctx.Settings.String(settings.KeyPanelPosition)
	bounds := PanelBounds(p.bounds, p.ctx.Config.PanelHeight, position)
	if err := p.surface.Reposition(bounds, edgeFor(position)); err != nil {
		return fmt.Errorf("reposition panel on monitor %d: %w", p.monitor, err)
	}
	return nil
}

// Destroy disconnects the panel's settings handlers and destroys its surface.
// Transferred indicators must have been sent back before.
func (p *Panel) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	for _, id := range p.handlers {
		p.ctx.Settings.Disconnect(id)
	}
	p.handlers = nil
	for _, role := range BoxRoles {
		p.boxes.Box(role).RemoveAll()
	}
	if err := p.surface.Destroy(); err != nil {
		p.ctx.Logger.Warn("failed to destroy panel surface", "monitor", p.monitor, "error", err)
	}
}
