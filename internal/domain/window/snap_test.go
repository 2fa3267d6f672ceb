package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

func snapped(t *testing.T, m *Manager, key types.SnapKey, dock bool) types.Rect {
	t.Helper()
	m.Snap(types.Terminal, key, dock)
	w, ok := m.Get(types.Terminal)
	require.True(t, ok)
	return w.Bounds()
}

func TestSnapBindings(t *testing.T) {
	// available rect with dock: 0,40 1920x970
	tests := []struct {
		key  types.SnapKey
		dock bool
		want types.Rect
	}{
		{types.SnapTopLeft, true, types.Rect{X: 0, Y: 40, Width: 960, Height: 485}},
		{types.SnapTopRight, true, types.Rect{X: 960, Y: 40, Width: 960, Height: 485}},
		{types.SnapBottomLeft, true, types.Rect{X: 0, Y: 525, Width: 960, Height: 485}},
		{types.SnapBottomRight, true, types.Rect{X: 960, Y: 525, Width: 960, Height: 485}},
		{types.SnapUp, true, types.Rect{X: 0, Y: 40, Width: 1920, Height: 485}},
		{types.SnapDown, true, types.Rect{X: 0, Y: 525, Width: 1920, Height: 485}},
		{types.SnapMaximize, true, types.Rect{X: 0, Y: 40, Width: 1920, Height: 970}},
		{types.SnapMaximize, false, types.Rect{X: 0, Y: 40, Width: 1920, Height: 1040}},
		{types.SnapCenter, true, types.Rect{X: 460, Y: 185.5, Width: 1000, Height: 679}},
		{types.SnapFullscreen, true, types.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			m := newTestManager()
			m.EnsureOpen(types.Terminal, 800, 600, types.PersonaDesktop, 0)

			got := snapped(t, m, tt.key, tt.dock)
			assert.InDelta(t, tt.want.X, got.X, 0.01)
			assert.InDelta(t, tt.want.Y, got.Y, 0.01)
			assert.InDelta(t, tt.want.Width, got.Width, 0.01)
			assert.InDelta(t, tt.want.Height, got.Height, 0.01)
		})
	}
}

func TestSnapLeftCycles(t *testing.T) {
	m := newTestManager()
	m.EnsureOpen(types.Terminal, 800, 600, types.PersonaDesktop, 0)
	avail := m.Available(true).Width

	first := snapped(t, m, types.SnapLeft, true)
	assert.InDelta(t, avail/2, first.Width, 0.01)

	want := []float64{avail / 3, avail * 2 / 3, avail / 2, avail / 3, avail * 2 / 3, avail / 2}
	widths := make(map[float64]struct{})
	for i, w := range want {
		got := snapped(t, m, types.SnapLeft, true)
		assert.InDelta(t, w, got.Width, 0.01, "step %d", i)
		assert.Equal(t, 0.0, got.X)
		assert.Equal(t, MenuBarHeight, got.Y)
		assert.InDelta(t, 970.0, got.Height, 0.01)
		widths[got.Width] = struct{}{}
	}
	assert.Len(t, widths, 3)
}

func TestSnapRightPinsToEdge(t *testing.T) {
	m := newTestManager()
	m.EnsureOpen(types.Terminal, 800, 600, types.PersonaDesktop, 0)

	for i := 0; i < 4; i++ {
		got := snapped(t, m, types.SnapRight, false)
		assert.InDelta(t, 1920.0, got.X+got.Width, 0.01)
		assert.InDelta(t, 1040.0, got.Height, 0.01)
	}
}

func TestSnapMissingWindowOrUnknownKey(t *testing.T) {
	m := newTestManager()
	assert.False(t, m.Snap(types.Terminal, types.SnapLeft, true))

	m.EnsureOpen(types.Terminal, 800, 600, types.PersonaDesktop, 0)
	before, _ := m.Get(types.Terminal)
	assert.False(t, m.Snap(types.Terminal, types.SnapKey("z"), true))
	after, _ := m.Get(types.Terminal)
	assert.Equal(t, before, after)
}

func TestSnapRepeatIsStable(t *testing.T) {
	m := newTestManager()
	m.EnsureOpen(types.Terminal, 800, 600, types.PersonaDesktop, 0)

	assert.True(t, m.Snap(types.Terminal, types.SnapMaximize, true))
	assert.False(t, m.Snap(types.Terminal, types.SnapMaximize, true))
}

func TestParseSnapKey(t *testing.T) {
	cases := map[string]types.SnapKey{
		"1":         types.SnapTopLeft,
		"ArrowLeft": types.SnapLeft,
		"right":     types.SnapRight,
		" Up ":      types.SnapUp,
		"arrowdown": types.SnapDown,
		"Enter":     types.SnapMaximize,
		"return":    types.SnapMaximize,
		"C":         types.SnapCenter,
		"f":         types.SnapFullscreen,
	}
	for in, want := range cases {
		got, ok := ParseSnapKey(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseSnapKey("q")
	assert.False(t, ok)
}
