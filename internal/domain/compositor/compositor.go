package compositor

import (
	"math"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/registry"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

const (
	// PlaceholderText is the content of windows whose app is not registered.
	PlaceholderText = "UNSUPPORTED"

	// revealOffset is how much of each window stays on screen in reveal mode.
	revealOffset = 60.0
	// fanOut separates stacked windows in reveal mode, per z-order index.
	fanOut = 4.0
)

// Scene is the shell state a frame is composed from.
type Scene struct {
	Seq           uint64
	Windows       *window.Manager
	Registry      *registry.Manager
	Persona       types.Persona
	Workspace     int
	Revealed      bool
	DockVisible   bool
	Theme         types.Theme
	Notifications []Notification
}

// Compositor produces frames. It holds only static tables and may be shared.
type Compositor struct {
	catalog *registry.Catalog
}

// New creates a compositor using catalog for fallback titles and affordances.
func New(catalog *registry.Catalog) *Compositor {
	if catalog == nil {
		catalog = registry.DefaultCatalog()
	}
	return &Compositor{catalog: catalog}
}

// Catalog returns the app catalog.
func (c *Compositor) Catalog() *registry.Catalog {
	return c.catalog
}

// Compose builds the frame for s.
func (c *Compositor) Compose(s Scene) Frame {
	viewport := s.Windows.Viewport()
	frame := Frame{
		Seq:           s.Seq,
		Viewport:      viewport,
		Persona:       s.Persona,
		Workspace:     s.Workspace,
		Revealed:      s.Revealed,
		Theme:         s.Theme,
		Notifications: s.Notifications,
	}
	if frame.Notifications == nil {
		frame.Notifications = []Notification{}
	}

	frame.Layers = append(frame.Layers, Layer{
		Kind:    LayerBackground,
		App:     types.Desktop,
		Width:   viewport.Width,
		Height:  viewport.Height,
		Content: host.Node{Kind: "wallpaper", Text: s.Theme.Wallpaper},
	})

	top, hasTop := s.Windows.TopVisible(s.Persona, s.Workspace)
	if hasTop {
		frame.Focused = &top
	}

	for k, id := range s.Windows.ZOrder() {
		win, ok := s.Windows.Get(id)
		if !ok || !window.IsVisible(win, s.Persona, s.Workspace) {
			continue
		}

		layer := Layer{
			Kind:    LayerWindow,
			App:     id,
			Title:   c.title(s.Registry, id),
			Width:   win.Width,
			Height:  win.Height,
			Z:       k,
			Focused: hasTop && id == top,
			Chrome:  c.chrome(id),
		}
		layer.X, layer.Y = place(win, viewport, k, s.Revealed)

		if content, ok := s.Registry.View(id, s.Theme); ok {
			layer.Content = content
		} else {
			layer.Content = host.Text(PlaceholderText)
			layer.Placeholder = true
		}

		frame.Layers = append(frame.Layers, layer)
	}

	frame.Dock = c.dock(s)
	return frame
}

// place returns the on-screen origin of a window at z-order index k.
func place(win types.WindowState, viewport types.Size, k int, revealed bool) (float64, float64) {
	if !revealed {
		return win.X, math.Max(win.Y, window.MenuBarHeight)
	}
	offset := float64(k) * fanOut
	x := viewport.Width/2 - win.Width/2 + offset
	y := -win.Height + revealOffset + offset
	return x, y
}

func (c *Compositor) title(reg *registry.Manager, id types.AppID) string {
	if t, ok := reg.Title(id); ok {
		return t
	}
	return c.catalog.Title(id)
}

// CloseAction returns the close affordance for id. Browser always closes
// through its dedicated action.
func CloseAction(id types.AppID) Action {
	if id == types.Browser {
		return Action{Kind: ActionCloseBrowser, App: types.Browser}
	}
	return Action{Kind: ActionToggleApp, App: id}
}

func (c *Compositor) chrome(id types.AppID) *Chrome {
	ch := &Chrome{Close: CloseAction(id)}
	if c.catalog.Info(id).Resizable {
		ch.Maximize = &Action{Kind: ActionMaximize, App: id}
	}
	return ch
}

func (c *Compositor) dock(s Scene) Dock {
	d := Dock{
		Visible: s.DockVisible,
		Pinned:  []types.AppID{},
		Running: []types.AppID{},
		Repos:   []types.AppID{},
		Open:    []types.AppID{},
	}

	pinned := make(map[types.AppID]bool)
	for _, id := range c.catalog.Pinned() {
		pinned[id] = true
		if id.IsRepo() {
			d.Repos = append(d.Repos, id)
		} else {
			d.Pinned = append(d.Pinned, id)
		}
	}

	for _, w := range s.Windows.Windows() {
		d.Open = append(d.Open, w.Owner)
		if pinned[w.Owner] {
			continue
		}
		if w.Owner.IsRepo() {
			d.Repos = append(d.Repos, w.Owner)
		} else {
			d.Running = append(d.Running, w.Owner)
		}
	}
	return d
}
