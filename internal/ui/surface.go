package ui

import (
	"fmt"
	"sync"

	"github.com/1broseidon/mmpanel/internal/platform"
)

// Edge is the screen edge a panel surface attaches to.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
)

func (e Edge) String() string {
	if e == EdgeBottom {
		return "bottom"
	}
	return "top"
}

// SurfaceSpec describes a surface to create.
type SurfaceSpec struct {
	Role    string // "panel", "slider"
	Monitor int
	Bounds  platform.Rect
	Edge    Edge
	// Strut reserves the edge so maximized windows do not overlap the surface.
	Strut   bool
	Visible bool
}

// Surface is a visual container owned by the caller.
type Surface interface {
	Bounds() platform.Rect
	Reposition(bounds platform.Rect, edge Edge) error
	SetVisible(visible bool) error
	Destroy() error
}

// SurfaceFactory creates surfaces.
type SurfaceFactory interface {
	CreateSurface(spec SurfaceSpec) (Surface, error)
}

// Corner is a hot-corner trigger area.
type Corner interface {
	Destroy() error
}

// CornerSpec places a corner on a monitor.
type CornerSpec struct {
	Monitor     int
	X           int
	Y           int
	BarrierSize int
}

// CornerFactory creates hot corners; trigger runs when the pointer enters one.
type CornerFactory interface {
	CreateCorner(spec CornerSpec, trigger func()) (Corner, error)
}

// SurfaceOp is one recorded surface call.
type SurfaceOp struct {
	Kind    string // create, reposition, visible, hidden, destroy
	ID      int
	Role    string
	Monitor int
	Bounds  platform.Rect
}

// MemorySurfaces is an in-memory SurfaceFactory and CornerFactory that records
// every call. It backs headless mode and the tests.
type MemorySurfaces struct {
	mu      sync.Mutex
	nextID  int
	ops     []SurfaceOp
	live    map[int]*memorySurface
	corners map[int]*memoryCorner
}

var (
	_ SurfaceFactory = (*MemorySurfaces)(nil)
	_ CornerFactory  = (*MemorySurfaces)(nil)
)

func NewMemorySurfaces() *MemorySurfaces {
	return &MemorySurfaces{
		live:    make(map[int]*memorySurface),
		corners: make(map[int]*memoryCorner),
	}
}

func (m *MemorySurfaces) CreateSurface(spec SurfaceSpec) (Surface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s := &memorySurface{owner: m, id: m.nextID, spec: spec}
	m.live[s.id] = s
	m.record("create", s)
	return s, nil
}

func (m *MemorySurfaces) CreateCorner(spec CornerSpec, trigger func()) (Corner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c := &memoryCorner{owner: m, id: m.nextID, spec: spec, trigger: trigger}
	m.corners[c.id] = c
	return c, nil
}

func (m *MemorySurfaces) record(kind string, s *memorySurface) {
	m.ops = append(m.ops, SurfaceOp{
		Kind:    kind,
		ID:      s.id,
		Role:    s.spec.Role,
		Monitor: s.spec.Monitor,
		Bounds:  s.spec.Bounds,
	})
}

// Ops returns a copy of the recorded calls.
func (m *MemorySurfaces) Ops() []SurfaceOp {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SurfaceOp, len(m.ops))
	copy(out, m.ops)
	return out
}

// Count returns how many calls of kind were recorded, optionally for one role.
func (m *MemorySurfaces) Count(kind, role string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, op := range m.ops {
		if op.Kind == kind && (role == "" || op.Role == role) {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls but keeps live surfaces.
func (m *MemorySurfaces) Reset() {
	m.mu.Lock()
	m.ops = nil
	m.mu.Unlock()
}

// Live returns the specs of surfaces not yet destroyed for role.
func (m *MemorySurfaces) Live(role string) []SurfaceSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SurfaceSpec
	for id := 1; id <= m.nextID; id++ {
		if s, ok := m.live[id]; ok && (role == "" || s.spec.Role == role) {
			out = append(out, s.spec)
		}
	}
	return out
}

// Corners returns the specs of live corners in creation order.
func (m *MemorySurfaces) Corners() []CornerSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []CornerSpec
	for id := 1; id <= m.nextID; id++ {
		if c, ok := m.corners[id]; ok {
			out = append(out, c.spec)
		}
	}
	return out
}

// TriggerCorner simulates the pointer entering the corner on monitor.
func (m *MemorySurfaces) TriggerCorner(monitor int) error {
	m.mu.Lock()
	var fn func()
	for _, c := range m.corners {
		if c.spec.Monitor == monitor {
			fn = c.trigger
			break
		}
	}
	m.mu.Unlock()
	if fn == nil {
		return fmt.Errorf("no hot corner on monitor %d", monitor)
	}
	fn()
	return nil
}

type memorySurface struct {
	owner *MemorySurfaces
	id    int
	spec  SurfaceSpec
}

func (s *memorySurface) Bounds() platform.Rect {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	return s.spec.Bounds
}

func (s *memorySurface) Reposition(bounds platform.Rect, edge Edge) error {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	if _, ok := s.owner.live[s.id]; !ok {
		return fmt.Errorf("surface %d: already destroyed", s.id)
	}
	s.spec.Bounds = bounds
	s.spec.Edge = edge
	s.owner.record("reposition", s)
	return nil
}

func (s *memorySurface) SetVisible(visible bool) error {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	if _, ok := s.owner.live[s.id]; !ok {
		return fmt.Errorf("surface %d: already destroyed", s.id)
	}
	if s.spec.Visible == visible {
		return nil
	}
	s.spec.Visible = visible
	if visible {
		s.owner.record("visible", s)
	} else {
		s.owner.record("hidden", s)
	}
	return nil
}

func (s *memorySurface) Destroy() error {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	if _, ok := s.owner.live[s.id]; !ok {
		return nil
	}
	delete(s.owner.live, s.id)
	s.owner.record("destroy", s)
	return nil
}

type memoryCorner struct {
	owner   *MemorySurfaces
	id      int
	spec    CornerSpec
	trigger func()
}

func (c *memoryCorner) Destroy() error {
	c.owner.mu.Lock()
	delete(c.owner.corners, c.id)
	c.owner.mu.Unlock()
	return nil
}
