package compositor

import (
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// LayerKind distinguishes the background from window layers.
type LayerKind string

const (
	LayerBackground LayerKind = "background"
	LayerWindow     LayerKind = "window"
)

// ActionKind names a chrome affordance.
type ActionKind string

const (
	ActionToggleApp    ActionKind = "toggle_app"
	ActionCloseBrowser ActionKind = "close_browser"
	ActionMaximize     ActionKind = "maximize"
)

// Action is a serialisable chrome action. The session turns it back into a
// shell message when activated.
type Action struct {
	Kind ActionKind  `json:"kind"`
	App  types.AppID `json:"app"`
}

// Chrome holds the affordances drawn around a window.
type Chrome struct {
	Close    Action  `json:"close"`
	Maximize *Action `json:"maximize,omitempty"`
}

// Layer is one drawable element of a frame.
type Layer struct {
	Kind        LayerKind   `json:"kind"`
	App         types.AppID `json:"app"`
	Title       string      `json:"title,omitempty"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Z           int         `json:"z"`
	Placeholder bool        `json:"placeholder,omitempty"`
	Focused     bool        `json:"focused,omitempty"`
	Chrome      *Chrome     `json:"chrome,omitempty"`
	Content     host.Node   `json:"content"`
}

// Bounds returns the placed rectangle of the layer.
func (l Layer) Bounds() types.Rect {
	return types.Rect{X: l.X, Y: l.Y, Width: l.Width, Height: l.Height}
}

// Dock lists the dock entries. Pinned and Running exclude repository apps,
// which are grouped in Repos.
type Dock struct {
	Visible bool          `json:"visible"`
	Pinned  []types.AppID `json:"pinned"`
	Running []types.AppID `json:"running"`
	Repos   []types.AppID `json:"repos"`
	Open    []types.AppID `json:"open"`
}

// Notification is a message surfaced through the shell context.
type Notification struct {
	ID    uint64      `json:"id"`
	App   types.AppID `json:"app"`
	Title string      `json:"title"`
	Body  string      `json:"body"`
}

// Frame is the composed output of one update cycle.
type Frame struct {
	Seq           uint64         `json:"seq"`
	Viewport      types.Size     `json:"viewport"`
	Persona       types.Persona  `json:"persona"`
	Workspace     int            `json:"workspace"`
	Revealed      bool           `json:"revealed"`
	Theme         types.Theme    `json:"theme"`
	Focused       *types.AppID   `json:"focused,omitempty"`
	Layers        []Layer        `json:"layers"`
	Dock          Dock           `json:"dock"`
	Notifications []Notification `json:"notifications"`
}

// Windows returns the window layers, back to front.
func (f Frame) Windows() []Layer {
	if len(f.Layers) == 0 {
		return nil
	}
	return f.Layers[1:]
}

// Layer returns the window layer for id.
func (f Frame) Layer(id types.AppID) (Layer, bool) {
	for _, l := range f.Windows() {
		if l.App == id {
			return l, true
		}
	}
	return Layer{}, false
}

// HitTest returns the topmost window layer containing pt.
func (f Frame) HitTest(pt types.Point) (Layer, bool) {
	windows := f.Windows()
	for i := len(windows) - 1; i >= 0; i-- {
		if windows[i].Bounds().Contains(pt) {
			return windows[i], true
		}
	}
	return Layer{}, false
}
