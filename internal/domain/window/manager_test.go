package window

import (
	"testing"

	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

func newTestManager() *Manager {
	return NewManager(types.Size{Width: 1920, Height: 1080})
}

func TestEnsureOpenCentersOnViewport(t *testing.T) {
	m := newTestManager()

	if !m.EnsureOpen(types.Terminal, 800, 600, types.PersonaDesktop, 0) {
		t.Fatal("Expected window to be created")
	}

	w, ok := m.Get(types.Terminal)
	if !ok {
		t.Fatal("Terminal window missing")
	}
	if w.X != 560 || w.Y != 240 {
		t.Errorf("Expected {560 240}, got {%v %v}", w.X, w.Y)
	}
	if w.Sticky {
		t.Error("New windows should not be sticky")
	}
	if top, _ := m.Focused(); top != types.Terminal {
		t.Errorf("Expected Terminal focused, got %s", top)
	}
}

func TestEnsureOpenKeepsExistingGeometry(t *testing.T) {
	m := newTestManager()
	m.EnsureOpen(types.Terminal, 800, 600, types.PersonaDesktop, 0)
	m.Move(types.Terminal, 10, 50)
	m.EnsureOpen(types.Editor, 640, 480, types.PersonaDesktop, 0)

	if m.EnsureOpen(types.Terminal, 100, 100, types.PersonaConsole, 3) {
		t.Error("Second EnsureOpen should not create a window")
	}

	w, _ := m.Get(types.Terminal)
	if w.X != 10 || w.Y != 50 || w.Width != 800 || w.Persona != types.PersonaDesktop {
		t.Errorf("Existing window changed: %+v", w)
	}
	if top, _ := m.Focused(); top != types.Terminal {
		t.Error("EnsureOpen should always focus")
	}
}

func TestZOrderUniqueness(t *testing.T) {
	m := newTestManager()
	ops := []struct {
		op string
		id types.AppID
	}{
		{"open", types.Terminal},
		{"open", types.Editor},
		{"focus", types.Terminal},
		{"open", types.Browser},
		{"open", types.Terminal},
		{"close", types.Editor},
		{"focus", types.Browser},
		{"close", types.Library},
		{"open", types.Editor},
		{"focus", types.Editor},
	}

	for _, o := range ops {
		switch o.op {
		case "open":
			m.EnsureOpen(o.id, 400, 300, types.PersonaDesktop, 0)
		case "focus":
			if m.IsOpen(o.id) {
				m.Focus(o.id)
			}
		case "close":
			m.Close(o.id)
		}

		seen := make(map[types.AppID]bool)
		for _, id := range m.ZOrder() {
			if seen[id] {
				t.Fatalf("after %s %s: duplicate %s in z-order", o.op, o.id, id)
			}
			seen[id] = true
			if !m.IsOpen(id) {
				t.Fatalf("after %s %s: %s in z-order without window", o.op, o.id, id)
			}
		}
		if len(seen) != m.Len() {
			t.Fatalf("after %s %s: z-order has %d entries, %d windows", o.op, o.id, len(seen), m.Len())
		}
	}
}

func TestFocusIdempotent(t *testing.T) {
	m := newTestManager()
	m.EnsureOpen(types.Terminal, 400, 300, types.PersonaDesktop, 0)
	m.EnsureOpen(types.Editor, 400, 300, types.PersonaDesktop, 0)
	m.EnsureOpen(types.Browser, 400, 300, types.PersonaDesktop, 0)

	m.Focus(types.Terminal)
	once := m.ZOrder()
	m.Focus(types.Terminal)
	twice := m.ZOrder()

	if len(once) != len(twice) {
		t.Fatalf("Length changed: %v vs %v", once, twice)
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("Order changed: %v vs %v", once, twice)
		}
	}
	if twice[len(twice)-1] != types.Terminal {
		t.Errorf("Expected Terminal topmost, got %v", twice)
	}
}

func TestCloseMissingIsNoop(t *testing.T) {
	m := newTestManager()
	if m.Close(types.Store) {
		t.Error("Close of unopened app should report false")
	}
	if len(m.ZOrder()) != 0 {
		t.Error("Z-order should stay empty")
	}
}

func TestZOrderReturnsCopy(t *testing.T) {
	m := newTestManager()
	m.EnsureOpen(types.Terminal, 400, 300, types.PersonaDesktop, 0)

	z := m.ZOrder()
	z[0] = types.Spotify

	if got := m.ZOrder()[0]; got != types.Terminal {
		t.Errorf("Z-order mutated through copy: %s", got)
	}
}

func TestIsVisible(t *testing.T) {
	tests := []struct {
		name      string
		win       types.WindowState
		persona   types.Persona
		workspace int
		want      bool
	}{
		{"same placement", types.WindowState{Persona: types.PersonaDesktop, Workspace: 0}, types.PersonaDesktop, 0, true},
		{"other workspace", types.WindowState{Persona: types.PersonaDesktop, Workspace: 0}, types.PersonaDesktop, 1, false},
		{"other persona", types.WindowState{Persona: types.PersonaDesktop, Workspace: 0}, types.PersonaConsole, 0, false},
		{"sticky other workspace", types.WindowState{Workspace: 0, Sticky: true}, types.PersonaDesktop, 2, true},
		{"sticky other persona", types.WindowState{Persona: types.PersonaDesktop, Sticky: true}, types.PersonaKiosk, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVisible(tt.win, tt.persona, tt.workspace); got != tt.want {
				t.Errorf("IsVisible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopVisibleSkipsHidden(t *testing.T) {
	m := newTestManager()
	m.EnsureOpen(types.Terminal, 400, 300, types.PersonaDesktop, 0)
	m.EnsureOpen(types.Editor, 400, 300, types.PersonaDesktop, 1)

	id, ok := m.TopVisible(types.PersonaDesktop, 0)
	if !ok || id != types.Terminal {
		t.Errorf("Expected Terminal, got %s (%v)", id, ok)
	}

	if _, ok := m.TopVisible(types.PersonaTV, 0); ok {
		t.Error("No window should be visible under TV")
	}
}

func TestResizeClampsToMinimum(t *testing.T) {
	m := newTestManager()
	m.EnsureOpen(types.Editor, 400, 300, types.PersonaDesktop, 0)

	m.Resize(types.Editor, 10, 10)

	w, _ := m.Get(types.Editor)
	if w.Width != MinWidth || w.Height != MinHeight {
		t.Errorf("Expected %vx%v, got %vx%v", MinWidth, MinHeight, w.Width, w.Height)
	}
	if m.Resize(types.Store, 500, 500) {
		t.Error("Resize of missing window should report false")
	}
}

func TestMoveToWorkspaceAndSticky(t *testing.T) {
	m := newTestManager()
	m.EnsureOpen(types.Terminal, 800, 600, types.PersonaDesktop, 0)

	m.MoveToWorkspace(types.Terminal, types.PersonaDesktop, 2)
	if m.Visible(types.Terminal, types.PersonaDesktop, 0) {
		t.Error("Terminal should have left workspace 0")
	}

	m.SetSticky(types.Terminal, true)
	if !m.Visible(types.Terminal, types.PersonaDesktop, 0) {
		t.Error("Sticky Terminal should be visible on workspace 0")
	}
}

func TestSetViewportIgnoresEmpty(t *testing.T) {
	m := NewManager(types.Size{})
	if m.Viewport() != DefaultViewport {
		t.Errorf("Expected default viewport, got %+v", m.Viewport())
	}

	m.SetViewport(types.Size{Width: 0, Height: 720})
	if m.Viewport() != DefaultViewport {
		t.Error("Empty size should be ignored")
	}

	m.SetViewport(types.Size{Width: 1280, Height: 720})
	if m.Viewport() != (types.Size{Width: 1280, Height: 720}) {
		t.Errorf("Viewport not updated: %+v", m.Viewport())
	}
}
