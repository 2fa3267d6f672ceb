package session

import (
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// Drag is an in-progress move or resize of one window.
type Drag struct {
	Owner  types.AppID
	Mode   Region
	Anchor types.Point
	Origin types.Rect
}

func (s *Session) pointerDown(m PointerDown) {
	w, ok := s.windows.Get(m.App)
	if !ok || !s.windows.Visible(m.App, s.persona, s.workspace) {
		return
	}
	s.windows.Focus(m.App)

	switch m.Region {
	case RegionTitle, RegionResize:
		s.pointer = &Drag{
			Owner:  m.App,
			Mode:   m.Region,
			Anchor: types.Point{X: m.X, Y: m.Y},
			Origin: w.Bounds(),
		}
	default:
		s.pointer = nil
	}
}

func (s *Session) pointerMove(m PointerMove) {
	d := s.pointer
	if d == nil {
		return
	}
	dx, dy := m.X-d.Anchor.X, m.Y-d.Anchor.Y

	switch d.Mode {
	case RegionTitle:
		s.windows.Move(d.Owner, d.Origin.X+dx, d.Origin.Y+dy)
	case RegionResize:
		s.windows.Resize(d.Owner, d.Origin.Width+dx, d.Origin.Height+dy)
	}
}
