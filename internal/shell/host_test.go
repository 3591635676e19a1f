package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/mmpanel/internal/platform"
	"github.com/1broseidon/mmpanel/internal/settings"
)

func TestHost_BuiltinIndicators(t *testing.T) {
	ctx, _ := newTestContext(t, platform.NewStaticTopology(0, rect(0, 1920)))
	h := ctx.Host

	assert.Equal(t, []string{IndicatorActivities, IndicatorDateTime}, h.Indicators())
	clock, ok := h.StatusArea(IndicatorDateTime)
	require.True(t, ok)
	assert.True(t, h.Box(BoxCenter).Contains(clock))
}

func TestHost_AddRemoveIndicatorNotifies(t *testing.T) {
	ctx, _ := newTestContext(t, platform.NewStaticTopology(0, rect(0, 1920)))
	h := ctx.Host
	calls := 0
	cancel := h.OnIndicatorsChanged(func() { calls++ })

	_, err := h.AddIndicator("volume", BoxRight, 0)
	require.NoError(t, err)
	_, err = h.AddIndicator("volume", BoxRight, 0)
	require.Error(t, err)
	_, err = h.AddIndicator("x", BoxRole("middle"), 0)
	require.Error(t, err)

	assert.True(t, h.RemoveIndicator("volume"))
	assert.False(t, h.RemoveIndicator("volume"))
	assert.Equal(t, 2, calls)

	cancel()
	_, err = h.AddIndicator("network", BoxRight, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestHost_RealizeAndRelayout(t *testing.T) {
	topo := platform.NewStaticTopology(0, rect(0, 1920), rect(1920, 1920))
	ctx, mem := newTestContext(t, topo)

	require.NoError(t, ctx.Host.Realize())
	require.NoError(t, ctx.Host.Realize())
	assert.Len(t, mem.Live("primary"), 1)

	topo.Set(1, rect(0, 1920), rect(1920, 2560))
	require.NoError(t, ctx.Host.Relayout())
	assert.Equal(t, 1920, mem.Live("primary")[0].Bounds.X)

	ctx.Host.Unrealize()
	assert.Empty(t, mem.Live("primary"))
}

func TestHost_DefaultCornerOnPrimaryOnly(t *testing.T) {
	topo := platform.NewStaticTopology(1, rect(0, 1920), rect(1920, 1920))
	ctx, mem := newTestContext(t, topo)

	ctx.Host.UpdateHotCorners()
	corners := mem.Corners()
	require.Len(t, corners, 1)
	assert.Equal(t, 1, corners[0].Monitor)
	assert.Equal(t, 1920, corners[0].X)

	require.NoError(t, mem.TriggerCorner(1))
	assert.True(t, ctx.Overview.Visible())
}

func TestHost_DefaultCornerFollowsFlag(t *testing.T) {
	topo := platform.NewStaticTopology(0, rect(0, 1920), rect(1920, 1920))
	ctx, mem := newTestContext(t, topo)
	ctx.Host.UpdateHotCorners()
	require.Len(t, mem.Corners(), 1)

	require.NoError(t, ctx.Settings.SetBool(settings.KeyEnableHotCorners, false))
	ctx.Host.UpdateHotCorners()
	assert.Empty(t, mem.Corners())
	assert.Zero(t, ctx.Host.CornerCount())

	require.NoError(t, ctx.Settings.SetBool(settings.KeyEnableHotCorners, true))
	ctx.Host.UpdateHotCorners()
	assert.Len(t, mem.Corners(), 1)
}

func TestHotCornerReconfigurer(t *testing.T) {
	topo := platform.NewStaticTopology(0, rect(0, 1920), rect(1920, 1920), rect(3840, 1280))
	ctx, mem := newTestContext(t, topo)
	ctx.Host.UpdateHotCorners()
	require.Len(t, mem.Corners(), 1)

	hc := NewHotCornerReconfigurer(ctx)
	hc.Install()
	require.Len(t, mem.Corners(), 3)
	assert.Equal(t, ctx.Config.PanelHeight, mem.Corners()[2].BarrierSize)

	// Topology changes go through the host entry point.
	topo.Set(0, rect(0, 1920), rect(1920, 1920))
	ctx.Host.UpdateHotCorners()
	assert.Len(t, mem.Corners(), 2)

	require.NoError(t, ctx.Settings.SetBool(settings.KeyEnableHotCorners, false))
	assert.Empty(t, mem.Corners())
	require.NoError(t, ctx.Settings.SetBool(settings.KeyEnableHotCorners, true))
	assert.Len(t, mem.Corners(), 2)

	hc.Uninstall()
	assert.False(t, ctx.Host.HasCornerStrategy())
	require.Len(t, mem.Corners(), 1)
	assert.Equal(t, 0, mem.Corners()[0].Monitor)

	// No longer listening.
	require.NoError(t, ctx.Settings.SetBool(settings.KeyEnableHotCorners, false))
	assert.Len(t, mem.Corners(), 1)
}

func TestHotCornerReconfigurer_RTL(t *testing.T) {
	topo := platform.NewStaticTopology(0, rect(0, 1920), rect(1920, 1280))
	ctx, mem := newTestContext(t, topo)
	ctx.Config.RTL = true

	NewHotCornerReconfigurer(ctx).Install()
	corners := mem.Corners()
	require.Len(t, corners, 2)
	assert.Equal(t, 1920, corners[0].X)
	assert.Equal(t, 3200, corners[1].X)
}

func TestOverview(t *testing.T) {
	o := NewOverview()
	var events []OverviewEvent
	cancel := o.Subscribe(func(e OverviewEvent) { events = append(events, e) })

	o.SetMode(ModeAppGrid)
	assert.Empty(t, events)

	o.Toggle()
	assert.True(t, o.PickerShown())
	o.SetMode(ModeAppGrid)
	assert.False(t, o.PickerShown())
	o.Toggle()
	assert.False(t, o.Visible())

	assert.Equal(t, []OverviewEvent{
		OverviewShowing, OverviewShown, OverviewModeChanged, OverviewHiding, OverviewHidden,
	}, events)

	// Reopening starts on the window picker.
	o.Show()
	assert.Equal(t, ModeWindowPicker, o.Mode())

	cancel()
	o.Hide()
	assert.Len(t, events, 7)
}
