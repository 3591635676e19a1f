package overview

import (
	"fmt"

	"github.com/1broseidon/mmpanel/internal/platform"
	"github.com/1broseidon/mmpanel/internal/shell"
	"github.com/1broseidon/mmpanel/internal/ui"
)

// Mirror is the workspace picker of one non-primary monitor.
type Mirror struct {
	ctx     *shell.Context
	monitor platform.Monitor
	side    Side
	surface ui.Surface
	thumbs  *Thumbnails
	cancel  func()
	shown   bool
	closed  bool
}

func newMirror(ctx *shell.Context, m platform.Monitor, side Side) (*Mirror, error) {
	visible := ctx.Overview.PickerShown()
	surface, err := ctx.Surfaces.CreateSurface(ui.SurfaceSpec{
		Role:    "slider",
		Monitor: m.Index,
		Bounds:  SliderBounds(m.Bounds, side),
		Visible: visible,
	})
	if err != nil {
		return nil, fmt.Errorf("slider surface for monitor %d: %w", m.Index, err)
	}
	mr := &Mirror{
		ctx:     ctx,
		monitor: m,
		side:    side,
		surface: surface,
		shown:   visible,
	}
	mr.thumbs = newThumbnails(ctx, m.Index)
	mr.cancel = ctx.Overview.Subscribe(func(shell.OverviewEvent) { mr.syncSlider() })
	return mr, nil
}

// syncSlider slides in while the overview shows the window picker and
// slides out otherwise.
func (mr *Mirror) syncSlider() {
	if mr.closed {
		return
	}
	want := mr.ctx.Overview.PickerShown()
	if want == mr.shown {
		return
	}
	if err := mr.surface.SetVisible(want); err != nil {
		mr.ctx.Logger.Warn("slider visibility failed", "monitor", mr.monitor.Index, "error", err)
		return
	}
	mr.shown = want
}

func (mr *Mirror) MonitorIndex() int {
	return mr.monitor.Index
}

func (mr *Mirror) Side() Side {
	return mr.side
}

// SliderShown reports whether the slider is slid in.
func (mr *Mirror) SliderShown() bool {
	return mr.shown
}

func (mr *Mirror) Thumbnails() *Thumbnails {
	return mr.thumbs
}

// update moves the mirror to a changed monitor. Thumbnails are rebuilt.
func (mr *Mirror) update(m platform.Monitor) {
	mr.monitor = m
	if err := mr.surface.Reposition(SliderBounds(m.Bounds, mr.side), ui.EdgeTop); err != nil {
		mr.ctx.Logger.Warn("slider reposition failed", "monitor", m.Index, "error", err)
	}
	mr.thumbs.rebuild(m.Index)
}

// place switches the slider to side if it differs.
func (mr *Mirror) place(side Side) error {
	if side == mr.side {
		return nil
	}
	if err := mr.surface.Reposition(SliderBounds(mr.monitor.Bounds, side), ui.EdgeTop); err != nil {
		return fmt.Errorf("slider for monitor %d: %w", mr.monitor.Index, err)
	}
	mr.side = side
	return nil
}

func (mr *Mirror) destroy() {
	if mr.closed {
		return
	}
	mr.closed = true
	mr.cancel()
	mr.thumbs.close()
	if err := mr.surface.Destroy(); err != nil {
		mr.ctx.Logger.Warn("slider destroy failed", "monitor", mr.monitor.Index, "error", err)
	}
}
