package overview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/mmpanel/internal/platform"
	"github.com/1broseidon/mmpanel/internal/settings"
	"github.com/1broseidon/mmpanel/internal/shell"
	"github.com/1broseidon/mmpanel/internal/ui"
)

func rect(x int) platform.Rect {
	return platform.Rect{X: x, Width: 1920, Height: 1080}
}

type fixture struct {
	ctx  *shell.Context
	topo *platform.StaticTopology
	ws   *platform.StaticWorkspaces
	mem  *ui.MemorySurfaces
	mgr  *Manager
}

func newFixture(t *testing.T, bounds ...platform.Rect) *fixture {
	t.Helper()
	topo := platform.NewStaticTopology(0, bounds...)
	ws := platform.NewStaticWorkspaces(3)
	mem := ui.NewMemorySurfaces()
	ctx, err := shell.NewContext(shell.Options{Topology: topo, Workspaces: ws, Surfaces: mem, Corners: mem})
	require.NoError(t, err)
	mgr := NewManager(ctx)
	require.NoError(t, mgr.Enable())
	return &fixture{ctx: ctx, topo: topo, ws: ws, mem: mem, mgr: mgr}
}

func TestPlacement(t *testing.T) {
	primary := rect(0)
	tests := []struct {
		name    string
		setting string
		monitor platform.Rect
		want    Side
	}{
		{"left always left", settings.SliderLeft, rect(-1920), SideLeft},
		{"right always right", settings.SliderRight, rect(1920), SideRight},
		{"auto right of primary", settings.SliderAuto, rect(1920), SideLeft},
		{"auto left of primary", settings.SliderAuto, rect(-1920), SideRight},
		{"auto stacked", settings.SliderAuto, platform.Rect{Y: 1080, Width: 1920, Height: 1080}, SideRight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Placement(tt.setting, tt.monitor, primary))
		})
	}
}

func TestSliderBounds(t *testing.T) {
	m := rect(1920)
	assert.Equal(t, platform.Rect{X: 1920, Width: 192, Height: 1080}, SliderBounds(m, SideLeft))
	assert.Equal(t, platform.Rect{X: 3648, Width: 192, Height: 1080}, SliderBounds(m, SideRight))
	assert.Equal(t, minSliderWidth, SliderBounds(platform.Rect{Width: 640, Height: 480}, SideLeft).Width)
}

func TestManager_MirrorPerSecondaryMonitor(t *testing.T) {
	f := newFixture(t, rect(0), rect(1920), rect(-1920))

	mirrors := f.mgr.Mirrors()
	require.Len(t, mirrors, 2)
	assert.Equal(t, 1, mirrors[0].MonitorIndex())
	assert.Equal(t, SideLeft, mirrors[0].Side())
	assert.Equal(t, 2, mirrors[1].MonitorIndex())
	assert.Equal(t, SideRight, mirrors[1].Side())

	live := f.mem.Live("slider")
	require.Len(t, live, 2)
	for _, s := range live {
		assert.False(t, s.Visible)
	}

	// Idempotent.
	res, err := f.mgr.Sync()
	require.NoError(t, err)
	assert.False(t, res.Changed())
}

func TestMirror_SliderFollowsOverviewState(t *testing.T) {
	f := newFixture(t, rect(0), rect(1920))
	mr := f.mgr.Mirrors()[0]

	f.ctx.Overview.Show()
	assert.True(t, mr.SliderShown())
	assert.True(t, f.mem.Live("slider")[0].Visible)

	f.ctx.Overview.SetMode(shell.ModeAppGrid)
	assert.False(t, mr.SliderShown())

	f.ctx.Overview.SetMode(shell.ModeWindowPicker)
	assert.True(t, mr.SliderShown())

	f.ctx.Overview.Hide()
	assert.False(t, mr.SliderShown())
	assert.False(t, f.mem.Live("slider")[0].Visible)
}

func TestThumbnails_FollowOverviewAndWorkspaces(t *testing.T) {
	f := newFixture(t, rect(0), rect(1920))
	th := f.mgr.Mirrors()[0].Thumbnails()
	assert.Zero(t, th.Len())

	f.ctx.Overview.Show()
	require.Equal(t, 3, th.Len())
	for _, x := range th.List() {
		assert.Equal(t, StateNormal, x.State)
	}

	f.ws.Set(5)
	list := th.List()
	require.Len(t, list, 5)
	assert.Equal(t, 4, list[4].Workspace)
	assert.Equal(t, []string{"workspace-0", "workspace-1", "workspace-2", "workspace-3", "workspace-4"}, th.Box().Names())

	f.ws.Set(2)
	assert.Equal(t, []string{"workspace-0", "workspace-1"}, th.Box().Names())

	f.ctx.Overview.Hide()
	assert.Zero(t, th.Len())

	// Closed overview: workspace changes are not tracked.
	f.ws.Set(4)
	assert.Zero(t, th.Len())

	f.ctx.Overview.Show()
	assert.Equal(t, 4, th.Len())
}

func TestThumbnails_AddedSlideInOnNextTurn(t *testing.T) {
	var queue []func()
	ws := platform.NewStaticWorkspaces(3)
	mem := ui.NewMemorySurfaces()
	ctx, err := shell.NewContext(shell.Options{
		Topology:   platform.NewStaticTopology(0, rect(0), rect(1920)),
		Workspaces: ws,
		Surfaces:   mem,
		Corners:    mem,
		Dispatch:   func(fn func()) { queue = append(queue, fn) },
	})
	require.NoError(t, err)
	mgr := NewManager(ctx)
	require.NoError(t, mgr.Enable())
	drain := func() {
		for len(queue) > 0 {
			fn := queue[0]
			queue = queue[1:]
			fn()
		}
	}
	ctx.Overview.Show()
	drain()
	th := mgr.Mirrors()[0].Thumbnails()
	require.Equal(t, 3, th.Len())

	ws.Set(5)
	require.Len(t, queue, 1)
	queue[0]()
	queue = queue[1:]

	list := th.List()
	require.Len(t, list, 5)
	assert.Equal(t, StateNormal, list[2].State)
	assert.Equal(t, StateNew, list[3].State)
	assert.Equal(t, StateNew, list[4].State)
	require.Len(t, queue, 1, "settle is posted")

	drain()
	for _, x := range th.List() {
		assert.Equal(t, StateNormal, x.State)
	}
	assert.Zero(t, th.Settle())

	// Shrinking posts nothing.
	ws.Set(4)
	drain()
	assert.Equal(t, 4, th.Len())
	assert.Empty(t, queue)
}

func TestManager_SliderNoneHidesMirrors(t *testing.T) {
	f := newFixture(t, rect(0), rect(1920))
	require.Len(t, f.mgr.Mirrors(), 1)

	require.NoError(t, f.ctx.Settings.SetString(settings.KeyThumbnailsSlider, settings.SliderNone))
	assert.False(t, f.mgr.Shown())
	assert.Empty(t, f.mgr.Mirrors())
	assert.Empty(t, f.mem.Live("slider"))

	// Topology changes are ignored while hidden.
	f.topo.Set(0, rect(0), rect(1920), rect(3840))
	assert.Empty(t, f.mgr.Mirrors())

	require.NoError(t, f.ctx.Settings.SetString(settings.KeyThumbnailsSlider, settings.SliderRight))
	require.Len(t, f.mgr.Mirrors(), 2)
	for _, mr := range f.mgr.Mirrors() {
		assert.Equal(t, SideRight, mr.Side())
	}
}

func TestManager_SideChangeRepositions(t *testing.T) {
	f := newFixture(t, rect(0), rect(1920))
	f.mem.Reset()

	require.NoError(t, f.ctx.Settings.SetString(settings.KeyThumbnailsSlider, settings.SliderRight))
	mr := f.mgr.Mirrors()[0]
	assert.Equal(t, SideRight, mr.Side())
	assert.Equal(t, 1, f.mem.Count("reposition", "slider"))
	assert.Zero(t, f.mem.Count("create", "slider"))
	assert.Equal(t, SliderBounds(rect(1920), SideRight), f.mem.Live("slider")[0].Bounds)
}

func TestManager_WorkspacesOnlyOnPrimary(t *testing.T) {
	f := newFixture(t, rect(0), rect(1920))

	require.NoError(t, f.ctx.Settings.SetBool(settings.KeyWorkspacesOnlyOnPrimary, true))
	assert.Equal(t, settings.SliderNone, f.ctx.Settings.String(settings.KeyThumbnailsSlider))
	assert.Empty(t, f.mgr.Mirrors())

	require.NoError(t, f.ctx.Settings.SetString(settings.KeyThumbnailsSlider, settings.SliderLeft))
	assert.False(t, f.ctx.Settings.Bool(settings.KeyWorkspacesOnlyOnPrimary))
	assert.Len(t, f.mgr.Mirrors(), 1)
}

func TestManager_TopologyChanges(t *testing.T) {
	f := newFixture(t, rect(0), rect(1920), rect(3840))
	f.ctx.Overview.Show()
	require.Len(t, f.mgr.Mirrors(), 2)

	f.topo.Set(0, rect(0), rect(1920))
	require.Len(t, f.mgr.Mirrors(), 1)
	assert.Equal(t, 1, f.mem.Count("destroy", "slider"))

	// Primary switch: the remaining mirror now sits left of the primary.
	f.topo.Set(1, rect(0), rect(1920))
	mirrors := f.mgr.Mirrors()
	require.Len(t, mirrors, 1)
	assert.Equal(t, 0, mirrors[0].MonitorIndex())
	assert.Equal(t, SideRight, mirrors[0].Side())
	assert.Equal(t, SliderBounds(rect(0), SideRight), f.mem.Live("slider")[0].Bounds)
	// Thumbnails were rebuilt for the open overview on the new index.
	th := mirrors[0].Thumbnails()
	assert.Equal(t, 3, th.Len())
	assert.Equal(t, "thumbnails-0", th.Box().Name)
	assert.Equal(t, 0, th.monitor)
}

func TestManager_Disable(t *testing.T) {
	f := newFixture(t, rect(0), rect(1920), rect(3840))
	f.mgr.Disable()

	assert.Empty(t, f.mgr.Mirrors())
	assert.Empty(t, f.mem.Live("slider"))

	require.NoError(t, f.ctx.Settings.SetString(settings.KeyThumbnailsSlider, settings.SliderLeft))
	f.topo.Set(0, rect(0), rect(1920))
	assert.Empty(t, f.mgr.Mirrors())

	// Overview events reach no destroyed mirror.
	f.ctx.Overview.Show()
	assert.Zero(t, f.mem.Count("visible", "slider"))
}
