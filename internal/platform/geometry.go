package platform

import "fmt"

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Right returns the x coordinate one past the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate one past the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Monitor describes one physical display as reported by the topology source.
// Index is the position in the enumeration, not a stable hardware id.
type Monitor struct {
	Index  int
	Name   string
	Bounds Rect
}

// Identity is the positional fingerprint of a monitor slot. Two identities
// are equal iff the index and all four geometry fields match.
type Identity struct {
	Index  int
	X      int
	Y      int
	Width  int
	Height int
}

// Identity returns the fingerprint of m.
func (m Monitor) Identity() Identity {
	return Identity{
		Index:  m.Index,
		X:      m.Bounds.X,
		Y:      m.Bounds.Y,
		Width:  m.Bounds.Width,
		Height: m.Bounds.Height,
	}
}

func (id Identity) String() string {
	return fmt.Sprintf("i%dx%dy%dw%dh%d", id.Index, id.X, id.Y, id.Width, id.Height)
}

// Others returns monitors whose index differs from primary, preserving order.
func Others(monitors []Monitor, primary int) []Monitor {
	out := make([]Monitor, 0, len(monitors))
	for _, m := range monitors {
		if m.Index == primary {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Find returns the monitor with the given index.
func Find(monitors []Monitor, index int) (Monitor, bool) {
	for _, m := range monitors {
		if m.Index == index {
			return m, true
		}
	}
	return Monitor{}, false
}
