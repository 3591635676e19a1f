package x11

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/mmpanel/internal/platform"
	"github.com/1broseidon/mmpanel/internal/ui"
)

const panelBackground = 0x1d1d1d

// Backend puts the display behind the platform and ui interfaces: RandR
// feeds the topology, _NET_NUMBER_OF_DESKTOPS the workspace count, and
// surfaces and corners become X windows.
type Backend struct {
	conn       *Connection
	log        *slog.Logger
	topology   *platform.StaticTopology
	workspaces *platform.StaticWorkspaces
}

var (
	_ ui.SurfaceFactory = (*Backend)(nil)
	_ ui.CornerFactory  = (*Backend)(nil)
)

// NewBackend reads the initial state and starts watching for changes. Change
// notifications are delivered once Run is processing events.
func NewBackend(conn *Connection, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Backend{
		conn:       conn,
		log:        logger,
		topology:   platform.NewStaticTopology(0),
		workspaces: platform.NewStaticWorkspaces(1),
	}
	if err := b.refreshTopology(); err != nil {
		return nil, err
	}
	b.refreshWorkspaces()

	if err := conn.WatchScreenChanges(func() {
		if err := b.refreshTopology(); err != nil {
			b.log.Warn("failed to refresh monitors", "error", err)
		}
	}); err != nil {
		return nil, err
	}
	if err := conn.WatchDesktopCount(b.refreshWorkspaces); err != nil {
		b.log.Warn("desktop count changes will not be tracked", "error", err)
	}
	return b, nil
}

// NewBackendFromDisplay opens a fresh connection to display.
func NewBackendFromDisplay(display string, logger *slog.Logger) (*Backend, error) {
	conn, err := NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	b, err := NewBackend(conn, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) Connection() *Connection {
	return b.conn
}

func (b *Backend) Topology() *platform.StaticTopology {
	return b.topology
}

func (b *Backend) Workspaces() *platform.StaticWorkspaces {
	return b.workspaces
}

// Run processes X events until ctx is done, then disconnects.
func (b *Backend) Run(ctx context.Context) error {
	defer b.conn.Close()
	return b.conn.Run(ctx)
}

func (b *Backend) refreshTopology() error {
	xms, err := b.conn.GetMonitors()
	if err != nil {
		return err
	}
	monitors := make([]platform.Monitor, len(xms))
	for i, m := range xms {
		monitors[i] = platform.Monitor{
			Name:   m.Name,
			Bounds: platform.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
		}
	}
	primary := PrimaryIndex(xms)
	if b.topology.SetMonitors(primary, monitors) {
		b.log.Debug("monitor topology changed", "monitors", len(monitors), "primary", primary)
	}
	return nil
}

func (b *Backend) refreshWorkspaces() {
	n, err := b.conn.GetDesktopCount()
	if err != nil {
		b.log.Debug("desktop count unavailable", "error", err)
		return
	}
	b.workspaces.Set(n)
}

func (b *Backend) CreateSurface(spec ui.SurfaceSpec) (ui.Surface, error) {
	r := spec.Bounds
	dock, err := b.conn.CreateDock(DockOptions{
		Title:       "mmpanel-" + spec.Role,
		X:           r.X,
		Y:           r.Y,
		Width:       r.Width,
		Height:      r.Height,
		Background:  panelBackground,
		StrutTop:    spec.Strut && spec.Edge == ui.EdgeTop,
		StrutBottom: spec.Strut && spec.Edge == ui.EdgeBottom,
		Mapped:      spec.Visible,
	})
	if err != nil {
		return nil, fmt.Errorf("monitor %d: %w", spec.Monitor, err)
	}
	return &surface{dock: dock, bounds: r}, nil
}

// CreateCorner places a 1px trigger window. A corner on a monitor's right
// edge is pulled back inside it.
func (b *Backend) CreateCorner(spec ui.CornerSpec, trigger func()) (ui.Corner, error) {
	x := spec.X
	if m, ok := platform.Find(b.topology.Monitors(), spec.Monitor); ok && x >= m.Bounds.Right() {
		x = m.Bounds.Right() - 1
	}
	w, err := b.conn.CreateCornerWindow(x, spec.Y, trigger)
	if err != nil {
		return nil, fmt.Errorf("monitor %d: %w", spec.Monitor, err)
	}
	return corner{w}, nil
}

type surface struct {
	dock      *Dock
	bounds    platform.Rect
	destroyed bool
}

func (s *surface) Bounds() platform.Rect {
	return s.bounds
}

func (s *surface) Reposition(bounds platform.Rect, edge ui.Edge) error {
	if s.destroyed {
		return fmt.Errorf("surface already destroyed")
	}
	s.bounds = bounds
	return s.dock.MoveResize(bounds.X, bounds.Y, bounds.Width, bounds.Height, edge == ui.EdgeTop)
}

func (s *surface) SetVisible(visible bool) error {
	if s.destroyed {
		return fmt.Errorf("surface already destroyed")
	}
	s.dock.SetMapped(visible)
	return nil
}

func (s *surface) Destroy() error {
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	s.dock.Destroy()
	return nil
}

type corner struct {
	w *CornerWindow
}

func (c corner) Destroy() error {
	c.w.Destroy()
	return nil
}
