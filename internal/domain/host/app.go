package host

import (
	"errors"

	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// ErrNoDecoder is returned by Decode for apps that accept no external input.
var ErrNoDecoder = errors.New("app does not accept external input")

// ShellContext exposes read-only shell facilities to an app during Update.
// Apps must not assume any access to shell state beyond it.
type ShellContext interface {
	// App is the identity the update is running for.
	App() types.AppID
	// Notify surfaces a message to the user.
	Notify(title, body string)
	// RootPosition is the offset of the shell's root window on screen.
	RootPosition() types.Point
	// Bounds is the app's current window rectangle, if it has one.
	Bounds() (types.Rect, bool)
}

// App is implemented by every hostable app against its private message type.
type App[M any] interface {
	Title() string
	Update(msg M, ctx ShellContext) Task[M]
	View(theme types.Theme) Node
	// Stream returns the app's background producer, or nil for none.
	Stream() Stream[M]
}

// LayoutAware apps are told when their window geometry changes.
type LayoutAware interface {
	WindowLayoutChanged(size types.Size)
}

// Decoder apps accept JSON input from the API layer.
type Decoder[M any] interface {
	Decode(raw []byte) (M, error)
}

// HostedApp is the uniform, type-erased surface the registry stores.
type HostedApp interface {
	Title() string
	Update(msg Msg, ctx ShellContext) Cmd
	View(theme types.Theme) Node
	Stream() Sub
	WindowLayoutChanged(size types.Size)
	Decode(raw []byte) (Msg, error)
	Close() error
}
