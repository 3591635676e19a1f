// Package overview mirrors the workspace picker onto every non-primary
// monitor: a slider holding one thumbnail per workspace, shown while the
// overview is open on the window picker.
package overview

import (
	"github.com/1broseidon/mmpanel/internal/platform"
	"github.com/1broseidon/mmpanel/internal/settings"
)

// Side is the edge of the monitor the slider is attached to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Placement picks the slider side for monitor. With "auto" the slider goes
// on the left of monitors lying right of the primary, so it faces away from
// the primary monitor.
func Placement(setting string, monitor, primary platform.Rect) Side {
	if setting == settings.SliderLeft || (setting == settings.SliderAuto && monitor.X > primary.X) {
		return SideLeft
	}
	return SideRight
}

const minSliderWidth = 96

// SliderBounds is the full-height strip along side of monitor.
func SliderBounds(monitor platform.Rect, side Side) platform.Rect {
	w := monitor.Width / 10
	if w < minSliderWidth {
		w = minSliderWidth
	}
	if w > monitor.Width {
		w = monitor.Width
	}
	x := monitor.X
	if side == SideRight {
		x = monitor.Right() - w
	}
	return platform.Rect{X: x, Y: monitor.Y, Width: w, Height: monitor.Height}
}
