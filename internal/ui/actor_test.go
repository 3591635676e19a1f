package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/mmpanel/internal/platform"
)

func TestBox_InsertChildAtFrontAndClamp(t *testing.T) {
	box := NewBox("right")
	a, b, c := NewActor("a"), NewActor("b"), NewActor("c")

	require.NoError(t, box.AddChild(a))
	require.NoError(t, box.InsertChildAt(b, 0))
	require.NoError(t, box.InsertChildAt(c, 99))

	assert.Equal(t, []string{"b", "a", "c"}, box.Names())
	assert.True(t, box.Contains(a))
	assert.Equal(t, box, a.Parent())
}

func TestBox_InsertRejectsParentedActor(t *testing.T) {
	left, right := NewBox("left"), NewBox("right")
	a := NewActor("clock")
	require.NoError(t, left.AddChild(a))

	err := right.InsertChildAt(a, 0)
	require.ErrorIs(t, err, ErrHasParent)
	assert.Equal(t, 0, right.Len())
}

func TestBox_RemoveChild(t *testing.T) {
	box := NewBox("center")
	a := NewActor("clock")
	require.NoError(t, box.AddChild(a))

	require.NoError(t, box.RemoveChild(a))
	assert.Nil(t, a.Parent())
	assert.False(t, box.Contains(a))
	require.ErrorIs(t, box.RemoveChild(a), ErrNotChild)
}

func TestActor_DetachWithoutParentIsNoop(t *testing.T) {
	a := NewActor("x")
	a.Detach()
	assert.Nil(t, a.Parent())
}

func TestMemorySurfaces_RecordsLifecycle(t *testing.T) {
	m := NewMemorySurfaces()
	s, err := m.CreateSurface(SurfaceSpec{Role: "panel", Monitor: 1, Bounds: platform.Rect{Width: 10, Height: 2}})
	require.NoError(t, err)

	require.NoError(t, s.Reposition(platform.Rect{X: 5, Width: 10, Height: 2}, EdgeTop))
	require.NoError(t, s.SetVisible(true))
	require.NoError(t, s.SetVisible(true))
	require.NoError(t, s.Destroy())
	require.NoError(t, s.Destroy())

	assert.Equal(t, 1, m.Count("create", "panel"))
	assert.Equal(t, 1, m.Count("reposition", ""))
	assert.Equal(t, 1, m.Count("visible", ""))
	assert.Equal(t, 1, m.Count("destroy", ""))
	assert.Empty(t, m.Live("panel"))
	assert.Error(t, s.Reposition(platform.Rect{}, EdgeTop))
}

func TestMemorySurfaces_TriggerCorner(t *testing.T) {
	m := NewMemorySurfaces()
	fired := 0
	c, err := m.CreateCorner(CornerSpec{Monitor: 2}, func() { fired++ })
	require.NoError(t, err)

	require.NoError(t, m.TriggerCorner(2))
	assert.Equal(t, 1, fired)
	assert.Error(t, m.TriggerCorner(0))

	require.NoError(t, c.Destroy())
	assert.Empty(t, m.Corners())
}
