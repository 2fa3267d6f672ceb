package http

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/compositor"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/session"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// appCommand builds a handler that applies the message for the :app param.
func (h *Handlers) appCommand(build func(types.AppID) host.Msg) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := types.ParseAppID(c.Param("app"))
		if err != nil {
			h.fail(c, err)
			return
		}
		h.call(c, build(id))
	}
}

// OpenApp opens or switches to an app's window.
func (h *Handlers) OpenApp(c *gin.Context) {
	h.appCommand(func(id types.AppID) host.Msg { return session.OpenApp{App: id} })(c)
}

// FocusApp raises an app's window.
func (h *Handlers) FocusApp(c *gin.Context) {
	h.appCommand(func(id types.AppID) host.Msg { return session.FocusApp{App: id} })(c)
}

// ToggleApp toggles an app's window.
func (h *Handlers) ToggleApp(c *gin.Context) {
	h.appCommand(func(id types.AppID) host.Msg { return session.ToggleApp{App: id} })(c)
}

// ToggleSticky pins or unpins an app's window.
func (h *Handlers) ToggleSticky(c *gin.Context) {
	h.appCommand(func(id types.AppID) host.Msg { return session.ToggleSticky{App: id} })(c)
}

// Maximize raises and maximizes an app's window.
func (h *Handlers) Maximize(c *gin.Context) {
	h.appCommand(func(id types.AppID) host.Msg { return session.Maximize{App: id} })(c)
}

// CloseApp closes an app's window. The Browser closes through CloseBrowser
// so its layout collapses.
func (h *Handlers) CloseApp(c *gin.Context) {
	h.appCommand(func(id types.AppID) host.Msg {
		if id == types.Browser {
			return session.CloseBrowser{}
		}
		return session.CloseApp{App: id}
	})(c)
}

// AppInput decodes the request body with the app's own decoder.
func (h *Handlers) AppInput(c *gin.Context) {
	id, err := types.ParseAppID(c.Param("app"))
	if err != nil {
		h.fail(c, err)
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		h.fail(c, fmt.Errorf("failed to read body: %w", err))
		return
	}
	h.respond(c)(h.loop.Input(c.Request.Context(), id, raw))
}

// MoveToWorkspace moves an app's window to another workspace.
func (h *Handlers) MoveToWorkspace(c *gin.Context) {
	id, err := types.ParseAppID(c.Param("app"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.workspaceCommand(c, func(index int) host.Msg {
		return session.MoveToWorkspace{App: id, Workspace: index}
	})
}

// SwitchWorkspace activates a workspace of the current persona.
func (h *Handlers) SwitchWorkspace(c *gin.Context) {
	h.workspaceCommand(c, func(index int) host.Msg {
		return session.SwitchWorkspace{Index: index}
	})
}

// workspaceCommand validates :index against the session before applying the
// built message. The session ignores out of range indices; the API rejects
// them.
func (h *Handlers) workspaceCommand(c *gin.Context, build func(int) host.Msg) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %q", ErrBadWorkspace, c.Param("index")))
		return
	}
	h.respond(c)(h.loop.DoUpdate(c.Request.Context(), func(s *session.Session) (host.Msg, error) {
		if index < 0 || index >= s.Workspaces() {
			return nil, fmt.Errorf("%w: %d (have %d)", ErrBadWorkspace, index, s.Workspaces())
		}
		return build(index), nil
	}))
}

// SwitchPersona activates a persona.
func (h *Handlers) SwitchPersona(c *gin.Context) {
	persona, err := types.ParsePersona(c.Param("persona"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.call(c, session.SwitchPersona{Persona: persona})
}

type snapRequest struct {
	Key string `json:"key" binding:"required"`
}

// Snap applies a snap binding to the focused window.
func (h *Handlers) Snap(c *gin.Context) {
	var req snapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("invalid request: %w", err))
		return
	}
	key, ok := window.ParseSnapKey(req.Key)
	if !ok {
		h.fail(c, fmt.Errorf("%w: %q", ErrBadSnapKey, req.Key))
		return
	}
	h.call(c, session.SnapFocused{Key: key})
}

// ToggleReveal flips reveal-workspace mode.
func (h *Handlers) ToggleReveal(c *gin.Context) {
	h.call(c, session.ToggleReveal{})
}

// ToggleDock shows or hides the dock.
func (h *Handlers) ToggleDock(c *gin.Context) {
	h.call(c, session.ToggleDock{})
}

func (h *Handlers) ToggleTheme(c *gin.Context) {
	h.call(c, session.ToggleTheme{})
}

type viewportRequest struct {
	Width  float64 `json:"width" binding:"required,gt=0"`
	Height float64 `json:"height" binding:"required,gt=0"`
}

// SetViewport reports a new viewport size.
func (h *Handlers) SetViewport(c *gin.Context) {
	var req viewportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("invalid request: %w", err))
		return
	}
	h.call(c, session.SetViewport{Size: types.Size{Width: req.Width, Height: req.Height}})
}

// PointerRequest is a pointer event from a front-end.
type PointerRequest struct {
	Event  string         `json:"event" binding:"required"`
	App    types.AppID    `json:"app"`
	Region session.Region `json:"region"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
}

// Message converts the event into a shell message.
func (r PointerRequest) Message() (host.Msg, error) {
	switch r.Event {
	case "down":
		region := r.Region
		if region == "" {
			region = session.RegionBody
		}
		return session.PointerDown{App: r.App, Region: region, X: r.X, Y: r.Y}, nil
	case "move":
		return session.PointerMove{X: r.X, Y: r.Y}, nil
	case "up":
		return session.PointerUp{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrBadPointer, r.Event)
}

// Pointer forwards a pointer event.
func (h *Handlers) Pointer(c *gin.Context) {
	var req PointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("invalid request: %w", err))
		return
	}
	msg, err := req.Message()
	if err != nil {
		h.fail(c, err)
		return
	}
	h.call(c, msg)
}

// Action activates a chrome affordance taken from a frame.
func (h *Handlers) Action(c *gin.Context) {
	var action compositor.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		h.fail(c, fmt.Errorf("invalid request: %w", err))
		return
	}
	msg, ok := session.ActionMessage(action)
	if !ok {
		h.fail(c, fmt.Errorf("unknown action %q", action.Kind))
		return
	}
	h.call(c, msg)
}

// DismissNotification removes a notification from the tray.
func (h *Handlers) DismissNotification(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.fail(c, fmt.Errorf("invalid notification id %q", c.Param("id")))
		return
	}
	h.call(c, session.DismissNotification{ID: id})
}
