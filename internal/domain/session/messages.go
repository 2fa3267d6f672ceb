package session

import (
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/compositor"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// OpenApp opens the app's window, or switches to it if it lives on another
// workspace or persona.
type OpenApp struct{ App types.AppID }

// FocusApp raises an open window.
type FocusApp struct{ App types.AppID }

// CloseApp closes the app's window. The app stays registered.
type CloseApp struct{ App types.AppID }

// ToggleApp opens a closed app, switches to a hidden one and closes a visible
// one.
type ToggleApp struct{ App types.AppID }

// CloseBrowser closes the browser window and collapses its layout to zero.
type CloseBrowser struct{}

// Maximize raises the window and fills the available rectangle.
type Maximize struct{ App types.AppID }

// SnapFocused applies a snap binding to the topmost visible window.
type SnapFocused struct{ Key types.SnapKey }

// SwitchWorkspace activates a workspace by index.
type SwitchWorkspace struct{ Index int }

// SwitchPersona activates a persona.
type SwitchPersona struct{ Persona types.Persona }

// ToggleReveal flips reveal-workspace mode.
type ToggleReveal struct{}

// ToggleDock shows or hides the dock.
type ToggleDock struct{}

// ToggleSticky pins a window across workspaces and personas.
type ToggleSticky struct{ App types.AppID }

// MoveToWorkspace moves a window to a workspace of the active persona.
type MoveToWorkspace struct {
	App       types.AppID
	Workspace int
}

// SetViewport reports a new viewport size.
type SetViewport struct{ Size types.Size }

// Region is the part of a window a pointer went down on.
type Region string

const (
	RegionTitle  Region = "title"
	RegionResize Region = "resize"
	RegionBody   Region = "body"
)

// PointerDown starts a drag on the title region or a resize on the handle.
// A press on the body only raises the window.
type PointerDown struct {
	App    types.AppID
	Region Region
	X, Y   float64
}

// PointerMove updates the active drag or resize.
type PointerMove struct{ X, Y float64 }

// PointerUp ends any drag or resize.
type PointerUp struct{}

// ToggleTheme flips between light and dark tokens.
type ToggleTheme struct{}

// DismissNotification removes a notification from the tray.
type DismissNotification struct{ ID uint64 }

// streamMsg tags a message produced by a background stream with the
// activation it belongs to, so output of a cancelled activation is dropped.
type streamMsg struct {
	app types.AppID
	gen uint64
	msg host.Msg
}

// ActionMessage converts a chrome action back into the shell message it
// stands for.
func ActionMessage(a compositor.Action) (host.Msg, bool) {
	switch a.Kind {
	case compositor.ActionToggleApp:
		return ToggleApp{App: a.App}, true
	case compositor.ActionCloseBrowser:
		return CloseBrowser{}, true
	case compositor.ActionMaximize:
		return Maximize{App: a.App}, true
	}
	return nil, false
}

// kindOf labels a message for metrics.
func kindOf(msg host.Msg) string {
	switch msg.(type) {
	case OpenApp:
		return "open_app"
	case FocusApp:
		return "focus_app"
	case CloseApp:
		return "close_app"
	case ToggleApp:
		return "toggle_app"
	case CloseBrowser:
		return "close_browser"
	case Maximize:
		return "maximize"
	case SnapFocused:
		return "snap"
	case SwitchWorkspace:
		return "switch_workspace"
	case SwitchPersona:
		return "switch_persona"
	case ToggleReveal:
		return "toggle_reveal"
	case ToggleDock:
		return "toggle_dock"
	case ToggleSticky:
		return "toggle_sticky"
	case MoveToWorkspace:
		return "move_to_workspace"
	case SetViewport:
		return "set_viewport"
	case PointerDown, PointerMove, PointerUp:
		return "pointer"
	case ToggleTheme:
		return "toggle_theme"
	case DismissNotification:
		return "dismiss_notification"
	case streamMsg:
		return "stream"
	case host.AppMsg:
		return "app"
	}
	return "other"
}
