package platform

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Topology exposes the current ordered monitor list and the primary index.
// OnChanged callbacks may be invoked from any goroutine; consumers are
// expected to hop onto their own event loop.
type Topology interface {
	Monitors() []Monitor
	PrimaryIndex() int
	OnChanged(fn func()) (cancel func())
}

// Workspaces exposes the number of virtual desktops.
type Workspaces interface {
	Count() int
	OnChanged(fn func()) (cancel func())
}

type listeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

func (l *listeners) add(fn func()) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func())
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}
}

func (l *listeners) fire() {
	l.mu.Lock()
	fns := make([]func(), 0, len(l.fns))
	// Registration order.
	for i := 0; i < l.next; i++ {
		if fn, ok := l.fns[i]; ok {
			fns = append(fns, fn)
		}
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// StaticTopology is a settable in-memory topology.
type StaticTopology struct {
	mu       sync.RWMutex
	monitors []Monitor
	primary  int
	changed  listeners
}

var _ Topology = (*StaticTopology)(nil)

// NewStaticTopology creates a topology with the given monitors. Monitor
// indexes are rewritten to their position.
func NewStaticTopology(primary int, bounds ...Rect) *StaticTopology {
	t := &StaticTopology{}
	t.monitors, t.primary = buildMonitors(primary, bounds)
	return t
}

func buildMonitors(primary int, bounds []Rect) ([]Monitor, int) {
	monitors := make([]Monitor, len(bounds))
	for i, b := range bounds {
		monitors[i] = Monitor{Index: i, Name: fmt.Sprintf("Monitor%d", i), Bounds: b}
	}
	return monitors, primary
}

// Set replaces the topology and notifies listeners.
func (t *StaticTopology) Set(primary int, bounds ...Rect) {
	t.mu.Lock()
	t.monitors, t.primary = buildMonitors(primary, bounds)
	t.mu.Unlock()
	t.changed.fire()
}

// SetMonitors replaces the topology with named monitors, reindexed by
// position, and notifies listeners only if anything differs.
func (t *StaticTopology) SetMonitors(primary int, monitors []Monitor) bool {
	next := make([]Monitor, len(monitors))
	for i, m := range monitors {
		m.Index = i
		next[i] = m
	}
	t.mu.Lock()
	same := primary == t.primary && len(next) == len(t.monitors)
	for i := 0; same && i < len(next); i++ {
		same = next[i] == t.monitors[i]
	}
	if !same {
		t.monitors, t.primary = next, primary
	}
	t.mu.Unlock()
	if !same {
		t.changed.fire()
	}
	return !same
}

func (t *StaticTopology) Monitors() []Monitor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Monitor, len(t.monitors))
	copy(out, t.monitors)
	return out
}

func (t *StaticTopology) PrimaryIndex() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.primary
}

func (t *StaticTopology) OnChanged(fn func()) func() {
	return t.changed.add(fn)
}

// StaticWorkspaces is a settable workspace counter.
type StaticWorkspaces struct {
	mu      sync.RWMutex
	count   int
	changed listeners
}

var _ Workspaces = (*StaticWorkspaces)(nil)

func NewStaticWorkspaces(count int) *StaticWorkspaces {
	return &StaticWorkspaces{count: count}
}

func (w *StaticWorkspaces) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.count
}

// Set updates the count and notifies listeners when it changed.
func (w *StaticWorkspaces) Set(count int) {
	w.mu.Lock()
	changed := w.count != count
	w.count = count
	w.mu.Unlock()
	if changed {
		w.changed.fire()
	}
}

func (w *StaticWorkspaces) OnChanged(fn func()) func() {
	return w.changed.add(fn)
}

// ParseGeometry parses an X11 style geometry "WxH+X+Y".
func ParseGeometry(s string) (Rect, error) {
	s = strings.TrimSpace(s)
	size, offset, ok := strings.Cut(s, "+")
	if !ok {
		return Rect{}, fmt.Errorf("geometry %q: expected WxH+X+Y", s)
	}
	wStr, hStr, ok := strings.Cut(size, "x")
	if !ok {
		return Rect{}, fmt.Errorf("geometry %q: expected WxH+X+Y", s)
	}
	xStr, yStr, ok := strings.Cut(offset, "+")
	if !ok {
		return Rect{}, fmt.Errorf("geometry %q: expected WxH+X+Y", s)
	}

	var vals [4]int
	for i, part := range []string{wStr, hStr, xStr, yStr} {
		v, err := strconv.Atoi(part)
		if err != nil {
			return Rect{}, fmt.Errorf("geometry %q: %w", s, err)
		}
		vals[i] = v
	}
	if vals[0] <= 0 || vals[1] <= 0 {
		return Rect{}, fmt.Errorf("geometry %q: width and height must be positive", s)
	}
	return Rect{X: vals[2], Y: vals[3], Width: vals[0], Height: vals[1]}, nil
}
