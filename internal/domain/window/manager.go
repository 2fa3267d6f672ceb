package window

import (
	"sort"

	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// DefaultViewport is used until the first viewport size is reported.
var DefaultViewport = types.Size{Width: 1920, Height: 1080}

const (
	// MinWidth and MinHeight bound interactive resizing.
	MinWidth  = 200.0
	MinHeight = 120.0
)

// Manager tracks open windows and their stacking order.
type Manager struct {
	windows  map[types.AppID]*types.WindowState
	zOrder   []types.AppID
	viewport types.Size
}

// NewManager creates a window manager for the given viewport. A zero
// viewport falls back to DefaultViewport.
func NewManager(viewport types.Size) *Manager {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = DefaultViewport
	}
	return &Manager{
		windows:  make(map[types.AppID]*types.WindowState),
		viewport: viewport,
	}
}

// Viewport returns the active viewport size.
func (m *Manager) Viewport() types.Size {
	return m.viewport
}

// SetViewport records a new viewport size. Existing windows are left in place.
func (m *Manager) SetViewport(size types.Size) {
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	m.viewport = size
}

// EnsureOpen creates a window for id centered on the viewport if it has none,
// then brings it to front. It reports whether a window was created.
func (m *Manager) EnsureOpen(id types.AppID, width, height float64, persona types.Persona, workspace int) bool {
	_, exists := m.windows[id]
	if !exists {
		m.windows[id] = &types.WindowState{
			Owner:     id,
			X:         (m.viewport.Width - width) / 2,
			Y:         (m.viewport.Height - height) / 2,
			Width:     width,
			Height:    height,
			Persona:   persona,
			Workspace: workspace,
		}
	}
	m.Focus(id)
	return !exists
}

// Focus moves id to the top of the z-order, appending it if absent.
func (m *Manager) Focus(id types.AppID) {
	m.removeFromZOrder(id)
	m.zOrder = append(m.zOrder, id)
}

// Close removes the window and its z-order entry. It reports whether a
// window existed.
func (m *Manager) Close(id types.AppID) bool {
	_, exists := m.windows[id]
	delete(m.windows, id)
	m.removeFromZOrder(id)
	return exists
}

func (m *Manager) removeFromZOrder(id types.AppID) {
	for i, z := range m.zOrder {
		if z == id {
			m.zOrder = append(m.zOrder[:i], m.zOrder[i+1:]...)
			return
		}
	}
}

// Get returns a copy of the window state for id.
func (m *Manager) Get(id types.AppID) (types.WindowState, bool) {
	w, ok := m.windows[id]
	if !ok {
		return types.WindowState{}, false
	}
	return *w, true
}

// IsOpen reports whether id has a window.
func (m *Manager) IsOpen(id types.AppID) bool {
	_, ok := m.windows[id]
	return ok
}

// ZOrder returns a copy of the stacking order, back to front.
func (m *Manager) ZOrder() []types.AppID {
	out := make([]types.AppID, len(m.zOrder))
	copy(out, m.zOrder)
	return out
}

// Position returns the index of id in the z-order.
func (m *Manager) Position(id types.AppID) (int, bool) {
	for i, z := range m.zOrder {
		if z == id {
			return i, true
		}
	}
	return 0, false
}

// Focused returns the topmost window owner.
func (m *Manager) Focused() (types.AppID, bool) {
	if len(m.zOrder) == 0 {
		return 0, false
	}
	return m.zOrder[len(m.zOrder)-1], true
}

// TopVisible returns the topmost window visible under persona and workspace.
func (m *Manager) TopVisible(persona types.Persona, workspace int) (types.AppID, bool) {
	for i := len(m.zOrder) - 1; i >= 0; i-- {
		id := m.zOrder[i]
		if w, ok := m.windows[id]; ok && IsVisible(*w, persona, workspace) {
			return id, true
		}
	}
	return 0, false
}

// Windows returns copies of all window states sorted by AppID.
func (m *Manager) Windows() []types.WindowState {
	out := make([]types.WindowState, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out
}

// Len returns the number of open windows.
func (m *Manager) Len() int {
	return len(m.windows)
}

// Visible reports whether id has a window that is visible under persona and
// workspace.
func (m *Manager) Visible(id types.AppID, persona types.Persona, workspace int) bool {
	w, ok := m.windows[id]
	return ok && IsVisible(*w, persona, workspace)
}

// IsVisible reports whether w is shown under the active persona and
// workspace. A sticky window bypasses both checks.
func IsVisible(w types.WindowState, persona types.Persona, workspace int) bool {
	return w.Sticky || (w.Persona == persona && w.Workspace == workspace)
}

// Move places the window's top-left corner at (x, y).
func (m *Manager) Move(id types.AppID, x, y float64) bool {
	w, ok := m.windows[id]
	if !ok {
		return false
	}
	w.X, w.Y = x, y
	return true
}

// Resize sets the window size, clamped to MinWidth x MinHeight.
func (m *Manager) Resize(id types.AppID, width, height float64) bool {
	w, ok := m.windows[id]
	if !ok {
		return false
	}
	w.Width = max(width, MinWidth)
	w.Height = max(height, MinHeight)
	return true
}

// SetSticky pins or unpins a window across workspaces and personas.
func (m *Manager) SetSticky(id types.AppID, sticky bool) bool {
	w, ok := m.windows[id]
	if !ok {
		return false
	}
	w.Sticky = sticky
	return true
}

// MoveToWorkspace re-tags the window with a persona and workspace.
func (m *Manager) MoveToWorkspace(id types.AppID, persona types.Persona, workspace int) bool {
	w, ok := m.windows[id]
	if !ok {
		return false
	}
	w.Persona = persona
	w.Workspace = workspace
	return true
}
