package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/compositor"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/session"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadWorkspace   = errors.New("workspace index out of range")
)

// Command is a shell command sent over the socket. Fields are read per
// command name.
type Command struct {
	Command string          `json:"command"`
	App     string          `json:"app,omitempty"`
	Index   int             `json:"index,omitempty"`
	Persona string          `json:"persona,omitempty"`
	Key     string          `json:"key,omitempty"`
	Width   float64         `json:"width,omitempty"`
	Height  float64         `json:"height,omitempty"`
	Event   string          `json:"event,omitempty"`
	Region  string          `json:"region,omitempty"`
	X       float64         `json:"x,omitempty"`
	Y       float64         `json:"y,omitempty"`
	Kind    string          `json:"kind,omitempty"`
	ID      uint64          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Apply runs the command on loop and returns the frame it produced.
func (c Command) Apply(ctx context.Context, loop *session.Loop) (compositor.Frame, error) {
	switch c.Command {
	case "input":
		id, err := types.ParseAppID(c.App)
		if err != nil {
			return compositor.Frame{}, err
		}
		return loop.Input(ctx, id, c.Payload)
	case "workspace", "move":
		return c.applyWorkspace(ctx, loop)
	}

	msg, err := c.message()
	if err != nil {
		return compositor.Frame{}, err
	}
	return loop.Call(ctx, msg)
}

func (c Command) applyWorkspace(ctx context.Context, loop *session.Loop) (compositor.Frame, error) {
	var app types.AppID
	if c.Command == "move" {
		id, err := types.ParseAppID(c.App)
		if err != nil {
			return compositor.Frame{}, err
		}
		app = id
	}
	return loop.DoUpdate(ctx, func(s *session.Session) (host.Msg, error) {
		if c.Index < 0 || c.Index >= s.Workspaces() {
			return nil, fmt.Errorf("%w: %d", ErrBadWorkspace, c.Index)
		}
		if c.Command == "move" {
			return session.MoveToWorkspace{App: app, Workspace: c.Index}, nil
		}
		return session.SwitchWorkspace{Index: c.Index}, nil
	})
}

// message maps commands that need no session state to shell messages.
func (c Command) message() (host.Msg, error) {
	switch c.Command {
	case "open", "focus", "toggle", "close", "sticky", "maximize":
		id, err := types.ParseAppID(c.App)
		if err != nil {
			return nil, err
		}
		return appMessage(c.Command, id), nil
	case "snap":
		key, ok := window.ParseSnapKey(c.Key)
		if !ok {
			return nil, fmt.Errorf("unknown snap key %q", c.Key)
		}
		return session.SnapFocused{Key: key}, nil
	case "persona":
		p, err := types.ParsePersona(c.Persona)
		if err != nil {
			return nil, err
		}
		return session.SwitchPersona{Persona: p}, nil
	case "reveal":
		return session.ToggleReveal{}, nil
	case "dock":
		return session.ToggleDock{}, nil
	case "theme":
		return session.ToggleTheme{}, nil
	case "viewport":
		if c.Width <= 0 || c.Height <= 0 {
			return nil, fmt.Errorf("invalid viewport %gx%g", c.Width, c.Height)
		}
		return session.SetViewport{Size: types.Size{Width: c.Width, Height: c.Height}}, nil
	case "pointer":
		return c.pointer()
	case "action":
		id, err := types.ParseAppID(c.App)
		if err != nil {
			return nil, err
		}
		msg, ok := session.ActionMessage(compositor.Action{Kind: compositor.ActionKind(c.Kind), App: id})
		if !ok {
			return nil, fmt.Errorf("unknown action %q", c.Kind)
		}
		return msg, nil
	case "dismiss":
		return session.DismissNotification{ID: c.ID}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, c.Command)
}

func appMessage(command string, id types.AppID) host.Msg {
	switch command {
	case "open":
		return session.OpenApp{App: id}
	case "focus":
		return session.FocusApp{App: id}
	case "toggle":
		return session.ToggleApp{App: id}
	case "sticky":
		return session.ToggleSticky{App: id}
	case "maximize":
		return session.Maximize{App: id}
	}
	if id == types.Browser {
		return session.CloseBrowser{}
	}
	return session.CloseApp{App: id}
}

func (c Command) pointer() (host.Msg, error) {
	switch c.Event {
	case "down":
		id, err := types.ParseAppID(c.App)
		if err != nil {
			return nil, err
		}
		region := session.Region(c.Region)
		if region == "" {
			region = session.RegionBody
		}
		return session.PointerDown{App: id, Region: region, X: c.X, Y: c.Y}, nil
	case "move":
		return session.PointerMove{X: c.X, Y: c.Y}, nil
	case "up":
		return session.PointerUp{}, nil
	}
	return nil, fmt.Errorf("unknown pointer event %q", c.Event)
}
