package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const allDesktops = 0xFFFFFFFF

// DockOptions describes a dock window.
type DockOptions struct {
	Title               string
	X, Y, Width, Height int
	Background          uint32
	StrutTop            bool
	StrutBottom         bool
	Mapped              bool
}

// Dock is a _NET_WM_WINDOW_TYPE_DOCK window sticky on every desktop,
// optionally reserving screen space with _NET_WM_STRUT_PARTIAL.
type Dock struct {
	conn   *Connection
	win    *xwindow.Window
	opts   DockOptions
	mapped bool
}

// CreateDock creates the window and maps it when opts.Mapped is set.
func (c *Connection) CreateDock(opts DockOptions) (*Dock, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}
	err = win.CreateChecked(c.Root, opts.X, opts.Y, opts.Width, opts.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		opts.Background, xproto.EventMaskStructureNotify)
	if err != nil {
		return nil, fmt.Errorf("failed to create dock window: %w", err)
	}

	d := &Dock{conn: c, win: win, opts: opts}
	if err := d.setProperties(); err != nil {
		win.Destroy()
		return nil, err
	}
	if opts.Mapped {
		win.Map()
		d.mapped = true
	}
	return d, nil
}

func (d *Dock) setProperties() error {
	xu := d.conn.XUtil
	id := d.win.Id
	if err := ewmh.WmWindowTypeSet(xu, id, []string{"_NET_WM_WINDOW_TYPE_DOCK"}); err != nil {
		return fmt.Errorf("failed to set window type: %w", err)
	}
	if err := ewmh.WmDesktopSet(xu, id, allDesktops); err != nil {
		return fmt.Errorf("failed to set window desktop: %w", err)
	}
	if err := ewmh.WmStateSet(xu, id, []string{"_NET_WM_STATE_STICKY", "_NET_WM_STATE_SKIP_TASKBAR", "_NET_WM_STATE_SKIP_PAGER"}); err != nil {
		return fmt.Errorf("failed to set window state: %w", err)
	}
	if d.opts.Title != "" {
		if err := ewmh.WmNameSet(xu, id, d.opts.Title); err != nil {
			return fmt.Errorf("failed to set window name: %w", err)
		}
		if err := icccm.WmClassSet(xu, id, &icccm.WmClass{Instance: d.opts.Title, Class: "mmpanel"}); err != nil {
			return fmt.Errorf("failed to set window class: %w", err)
		}
	}
	return d.setStrut()
}

// setStrut reserves the dock's edge. Strut values are relative to the root
// window, which spans every monitor.
func (d *Dock) setStrut() error {
	if !d.opts.StrutTop && !d.opts.StrutBottom {
		return nil
	}
	xu := d.conn.XUtil
	rootHeight := int(xu.Screen().HeightInPixels)
	sp := &ewmh.WmStrutPartial{}
	startX := uint(d.opts.X)
	endX := uint(d.opts.X + d.opts.Width - 1)
	if d.opts.StrutTop {
		sp.Top = uint(d.opts.Y + d.opts.Height)
		sp.TopStartX, sp.TopEndX = startX, endX
	} else {
		sp.Bottom = uint(rootHeight - d.opts.Y)
		sp.BottomStartX, sp.BottomEndX = startX, endX
	}
	if err := ewmh.WmStrutPartialSet(xu, d.win.Id, sp); err != nil {
		return fmt.Errorf("failed to set strut: %w", err)
	}
	return nil
}

// MoveResize changes geometry and the reserved edge.
func (d *Dock) MoveResize(x, y, width, height int, top bool) error {
	d.opts.X, d.opts.Y, d.opts.Width, d.opts.Height = x, y, width, height
	if d.opts.StrutTop || d.opts.StrutBottom {
		d.opts.StrutTop, d.opts.StrutBottom = top, !top
	}
	d.win.MoveResize(x, y, width, height)
	return d.setStrut()
}

func (d *Dock) SetMapped(mapped bool) {
	if mapped == d.mapped {
		return
	}
	if mapped {
		d.win.Map()
	} else {
		d.win.Unmap()
	}
	d.mapped = mapped
}

func (d *Dock) Destroy() {
	d.win.Destroy()
}

// CornerWindow is an unmanaged 1x1 InputOnly window that fires on pointer
// entry.
type CornerWindow struct {
	conn *Connection
	id   xproto.Window
}

// CreateCornerWindow places a corner window at (x, y).
func (c *Connection) CreateCornerWindow(x, y int, trigger func()) (*CornerWindow, error) {
	conn := c.XUtil.Conn()
	id, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}
	err = xproto.CreateWindowChecked(conn, 0, id, c.Root,
		int16(x), int16(y), 1, 1, 0,
		xproto.WindowClassInputOnly, 0,
		xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{1, xproto.EventMaskEnterWindow}).Check()
	if err != nil {
		return nil, fmt.Errorf("failed to create corner window: %w", err)
	}

	xevent.EnterNotifyFun(func(xu *xgbutil.XUtil, ev xevent.EnterNotifyEvent) {
		trigger()
	}).Connect(c.XUtil, id)
	xproto.MapWindow(conn, id)
	return &CornerWindow{conn: c, id: id}, nil
}

func (w *CornerWindow) Destroy() {
	xevent.Detach(w.conn.XUtil, w.id)
	xproto.DestroyWindow(w.conn.XUtil.Conn(), w.id)
}
