package window

import (
	"math"
	"strings"

	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

const (
	// MenuBarHeight is the top inset reserved for the menu strip.
	MenuBarHeight = 40.0
	// DockHeight is the bottom inset reserved while the dock is shown.
	DockHeight = 70.0

	centerRatio     = 0.7
	centerMaxWidth  = 1000.0
	centerMaxHeight = 700.0

	// widths within this distance count as the same cycle step
	cycleTolerance = 1.0
)

// ParseSnapKey normalizes a key name into a SnapKey. Arrow names are accepted
// with or without the "arrow" prefix.
func ParseSnapKey(s string) (types.SnapKey, bool) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.TrimPrefix(k, "arrow")
	switch types.SnapKey(k) {
	case types.SnapTopLeft, types.SnapTopRight, types.SnapBottomLeft, types.SnapBottomRight,
		types.SnapLeft, types.SnapRight, types.SnapUp, types.SnapDown,
		types.SnapMaximize, types.SnapCenter, types.SnapFullscreen:
		return types.SnapKey(k), true
	case "return":
		return types.SnapMaximize, true
	}
	return "", false
}

// Available returns the rectangle windows may be snapped into.
func (m *Manager) Available(dockVisible bool) types.Rect {
	h := m.viewport.Height - MenuBarHeight
	if dockVisible {
		h -= DockHeight
	}
	return types.Rect{X: 0, Y: MenuBarHeight, Width: m.viewport.Width, Height: h}
}

// Snap applies a keyboard layout binding to the window owned by id. Unknown
// keys and missing windows are ignored. It reports whether geometry changed.
func (m *Manager) Snap(id types.AppID, key types.SnapKey, dockVisible bool) bool {
	w, ok := m.windows[id]
	if !ok {
		return false
	}

	before := w.Bounds()
	avail := m.Available(dockVisible)
	top := avail.Y
	halfW, halfH := avail.Width/2, avail.Height/2

	switch key {
	case types.SnapTopLeft:
		setRect(w, 0, top, halfW, halfH)
	case types.SnapTopRight:
		setRect(w, halfW, top, halfW, halfH)
	case types.SnapBottomLeft:
		setRect(w, 0, top+halfH, halfW, halfH)
	case types.SnapBottomRight:
		setRect(w, halfW, top+halfH, halfW, halfH)
	case types.SnapLeft:
		width := nextCycleWidth(w.Width, avail.Width)
		setRect(w, 0, top, width, avail.Height)
	case types.SnapRight:
		width := nextCycleWidth(w.Width, avail.Width)
		setRect(w, avail.Width-width, top, width, avail.Height)
	case types.SnapUp:
		setRect(w, 0, top, avail.Width, halfH)
	case types.SnapDown:
		setRect(w, 0, top+halfH, avail.Width, halfH)
	case types.SnapMaximize:
		setRect(w, 0, top, avail.Width, avail.Height)
	case types.SnapCenter:
		width := math.Min(avail.Width*centerRatio, centerMaxWidth)
		height := math.Min(avail.Height*centerRatio, centerMaxHeight)
		setRect(w, (m.viewport.Width-width)/2, top+(avail.Height-height)/2, width, height)
	case types.SnapFullscreen:
		setRect(w, 0, 0, m.viewport.Width, m.viewport.Height)
	default:
		return false
	}

	return w.Bounds() != before
}

// nextCycleWidth steps 1/2 -> 1/3 -> 2/3 -> 1/2 of the available width. Any
// width off the cycle restarts it at 1/2.
func nextCycleWidth(current, avail float64) float64 {
	switch {
	case math.Abs(current-avail/2) < cycleTolerance:
		return avail / 3
	case math.Abs(current-avail/3) < cycleTolerance:
		return avail * 2 / 3
	default:
		return avail / 2
	}
}

func setRect(w *types.WindowState, x, y, width, height float64) {
	w.X, w.Y, w.Width, w.Height = x, y, width, height
}
