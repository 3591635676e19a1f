package overview

import (
	"fmt"

	"github.com/1broseidon/mmpanel/internal/reconcile"
	"github.com/1broseidon/mmpanel/internal/shell"
	"github.com/1broseidon/mmpanel/internal/ui"
)

// ThumbnailState tracks the slide-in of a thumbnail.
type ThumbnailState string

const (
	// StateNew thumbnails start slid out and slide in once settled.
	StateNew    ThumbnailState = "new"
	StateNormal ThumbnailState = "normal"
)

// Thumbnail is the miniature of one workspace.
type Thumbnail struct {
	Workspace int
	State     ThumbnailState
	actor     *ui.Actor
}

// Thumbnails is the strip of workspace thumbnails of one mirror. The strip
// only exists while the overview is open: it is filled when the overview
// starts showing and emptied once it is hidden.
type Thumbnails struct {
	ctx     *shell.Context
	monitor int
	box     *ui.Box
	slots   reconcile.Slots[int, *Thumbnail]
	active  bool
	closed  bool

	cancelOverview   func()
	cancelWorkspaces func()
}

func newThumbnails(ctx *shell.Context, monitor int) *Thumbnails {
	t := &Thumbnails{
		ctx:     ctx,
		monitor: monitor,
		box:     ui.NewBox(boxName(monitor)),
	}
	t.cancelOverview = ctx.Overview.Subscribe(t.overviewChanged)
	t.cancelWorkspaces = ctx.Workspaces.OnChanged(func() {
		ctx.Dispatch(t.workspacesChanged)
	})
	if ctx.Overview.Visible() {
		t.active = true
		t.sync()
	}
	return t
}

func boxName(monitor int) string {
	return fmt.Sprintf("thumbnails-%d", monitor)
}

func (t *Thumbnails) overviewChanged(e shell.OverviewEvent) {
	switch e {
	case shell.OverviewShowing:
		t.active = true
		t.sync()
	case shell.OverviewHidden:
		t.active = false
		t.clear()
	}
}

func (t *Thumbnails) workspacesChanged() {
	if t.closed || !t.active {
		return
	}
	if t.sync() > 0 {
		// Added thumbnails slide in on the next loop turn.
		t.ctx.Dispatch(t.settleNew)
	}
}

func (t *Thumbnails) settleNew() {
	if t.closed || !t.active {
		return
	}
	if n := t.Settle(); n > 0 {
		t.ctx.Logger.Debug("thumbnails settled", "monitor", t.monitor, "count", n)
	}
}

// sync adds thumbnails for new workspaces and drops those of removed ones,
// last first. It returns the number of thumbnails added.
func (t *Thumbnails) sync() int {
	n := t.ctx.Workspaces.Count()
	keys := make([]int, n)
	for i := range keys {
		keys[i] = i
	}
	initial := t.slots.Len() == 0

	res, err := t.slots.Sync(keys, reconcile.Hooks[int, *Thumbnail]{
		Create: func(j int, ws int) (*Thumbnail, error) {
			state := StateNormal
			if !initial {
				state = StateNew
			}
			th := &Thumbnail{Workspace: ws, State: state, actor: ui.NewActor(fmt.Sprintf("workspace-%d", ws))}
			if err := t.box.AddChild(th.actor); err != nil {
				return nil, err
			}
			return th, nil
		},
		Destroy: func(j int, th *Thumbnail) {
			_ = t.box.RemoveChild(th.actor)
		},
	})
	if err != nil {
		t.ctx.Logger.Warn("thumbnail sync failed", "monitor", t.monitor, "error", err)
	}
	if res.Changed() {
		t.ctx.Logger.Debug("thumbnails synced", "monitor", t.monitor,
			"workspaces", n, "added", res.Created, "removed", res.Removed)
	}
	return res.Created
}

func (t *Thumbnails) clear() {
	t.slots.Clear(func(j int, th *Thumbnail) {
		_ = t.box.RemoveChild(th.actor)
	})
}

// rebuild recreates the strip for monitor if the overview is open.
func (t *Thumbnails) rebuild(monitor int) {
	t.clear()
	t.monitor = monitor
	t.box.Name = boxName(monitor)
	if t.active {
		t.sync()
	}
}

// Settle finishes the slide-in of new thumbnails and returns how many moved.
func (t *Thumbnails) Settle() int {
	n := 0
	for _, th := range t.slots.Values() {
		if th.State == StateNew {
			th.State = StateNormal
			n++
		}
	}
	return n
}

// List returns a copy of the thumbnails in workspace order.
func (t *Thumbnails) List() []Thumbnail {
	vals := t.slots.Values()
	out := make([]Thumbnail, len(vals))
	for i, th := range vals {
		out[i] = Thumbnail{Workspace: th.Workspace, State: th.State}
	}
	return out
}

func (t *Thumbnails) Len() int {
	return t.slots.Len()
}

// Box is the container holding the thumbnail actors.
func (t *Thumbnails) Box() *ui.Box {
	return t.box
}

func (t *Thumbnails) close() {
	if t.closed {
		return
	}
	t.closed = true
	t.cancelOverview()
	t.cancelWorkspaces()
	t.clear()
}
