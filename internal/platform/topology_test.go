package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		in      string
		want    Rect
		wantErr bool
	}{
		{in: "1920x1080+0+0", want: Rect{Width: 1920, Height: 1080}},
		{in: " 2560x1440+1920+0 ", want: Rect{X: 1920, Width: 2560, Height: 1440}},
		{in: "1920x1080", wantErr: true},
		{in: "1920+0+0", wantErr: true},
		{in: "0x1080+0+0", wantErr: true},
		{in: "axb+0+0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGeometry(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentity(t *testing.T) {
	a := Monitor{Index: 1, Bounds: Rect{X: 1920, Width: 1920, Height: 1080}}
	b := a
	b.Name = "HDMI-1"
	assert.Equal(t, a.Identity(), b.Identity(), "names do not take part")

	b.Bounds.Y = 10
	assert.NotEqual(t, a.Identity(), b.Identity())
	assert.Equal(t, "i1x1920y0w1920h1080", a.Identity().String())
}

func TestOthers(t *testing.T) {
	topo := NewStaticTopology(1, Rect{Width: 10}, Rect{X: 10, Width: 10}, Rect{X: 20, Width: 10})
	others := Others(topo.Monitors(), topo.PrimaryIndex())
	require.Len(t, others, 2)
	assert.Equal(t, 0, others[0].Index)
	assert.Equal(t, 2, others[1].Index)

	_, ok := Find(topo.Monitors(), 3)
	assert.False(t, ok)
}

func TestStaticTopology_SetNotifies(t *testing.T) {
	topo := NewStaticTopology(0, Rect{Width: 10})
	calls := 0
	cancel := topo.OnChanged(func() { calls++ })

	topo.Set(0, Rect{Width: 10}, Rect{X: 10, Width: 10})
	assert.Equal(t, 1, calls)
	assert.Len(t, topo.Monitors(), 2)

	cancel()
	topo.Set(0)
	assert.Equal(t, 1, calls)
}

func TestStaticTopology_SetMonitorsOnlyOnChange(t *testing.T) {
	topo := NewStaticTopology(0)
	calls := 0
	topo.OnChanged(func() { calls++ })

	monitors := []Monitor{
		{Index: 7, Name: "DP-1", Bounds: Rect{Width: 1920, Height: 1080}},
		{Index: 9, Name: "HDMI-1", Bounds: Rect{X: 1920, Width: 1920, Height: 1080}},
	}
	assert.True(t, topo.SetMonitors(1, monitors))
	assert.False(t, topo.SetMonitors(1, monitors))
	assert.Equal(t, 1, calls)

	got := topo.Monitors()
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 1, got[1].Index)
	assert.Equal(t, "HDMI-1", got[1].Name)
	assert.Equal(t, 1, topo.PrimaryIndex())

	assert.True(t, topo.SetMonitors(0, monitors))
	assert.Equal(t, 2, calls)
}

func TestStaticWorkspaces(t *testing.T) {
	ws := NewStaticWorkspaces(2)
	calls := 0
	ws.OnChanged(func() { calls++ })

	ws.Set(2)
	assert.Zero(t, calls)
	ws.Set(4)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 4, ws.Count())
}
