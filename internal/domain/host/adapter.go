package host

import (
	"io"

	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// AppMsg carries an app-private message over the shared bus.
type AppMsg struct {
	App     types.AppID
	Payload interface{}
}

// Route returns the canonical lift/lower pair for id: lift wraps a message in
// an AppMsg addressed to id, lower accepts only AppMsgs addressed to id whose
// payload has type M.
func Route[M any](id types.AppID) (lift func(M) Msg, lower func(Msg) (M, bool)) {
	lift = func(m M) Msg {
		return AppMsg{App: id, Payload: m}
	}
	lower = func(msg Msg) (M, bool) {
		var zero M
		env, ok := msg.(AppMsg)
		if !ok || env.App != id {
			return zero, false
		}
		m, ok := env.Payload.(M)
		if !ok {
			return zero, false
		}
		return m, true
	}
	return lift, lower
}

// Adapter erases the message type of an App[M].
type Adapter[M any] struct {
	app   App[M]
	lift  func(M) Msg
	lower func(Msg) (M, bool)
}

// Wrap builds an adapter from explicit lift and lower functions.
func Wrap[M any](app App[M], lift func(M) Msg, lower func(Msg) (M, bool)) *Adapter[M] {
	return &Adapter[M]{app: app, lift: lift, lower: lower}
}

// Host wraps app using the AppMsg envelope routed to id.
func Host[M any](id types.AppID, app App[M]) *Adapter[M] {
	lift, lower := Route[M](id)
	return Wrap(app, lift, lower)
}

// Unwrap returns the wrapped app.
func (a *Adapter[M]) Unwrap() App[M] {
	return a.app
}

func (a *Adapter[M]) Title() string {
	return a.app.Title()
}

// Update lowers msg and runs the app's update. A message that does not
// belong to this app is a no-op.
func (a *Adapter[M]) Update(msg Msg, ctx ShellContext) Cmd {
	m, ok := a.lower(msg)
	if !ok {
		return nil
	}
	return MapTask(a.app.Update(m, ctx), a.lift)
}

// View renders the app and lifts every action in the tree.
func (a *Adapter[M]) View(theme types.Theme) Node {
	return MapActions(a.app.View(theme), func(action Msg) Msg {
		if m, ok := action.(M); ok {
			return a.lift(m)
		}
		return action
	})
}

// Stream returns the app's lifted background stream, or nil.
func (a *Adapter[M]) Stream() Sub {
	return MapStream(a.app.Stream(), a.lift)
}

func (a *Adapter[M]) WindowLayoutChanged(size types.Size) {
	if la, ok := a.app.(LayoutAware); ok {
		la.WindowLayoutChanged(size)
	}
}

// Decode parses external input into a lifted message.
func (a *Adapter[M]) Decode(raw []byte) (Msg, error) {
	dec, ok := a.app.(Decoder[M])
	if !ok {
		return nil, ErrNoDecoder
	}
	m, err := dec.Decode(raw)
	if err != nil {
		return nil, err
	}
	return a.lift(m), nil
}

// Close releases app resources if the app holds any.
func (a *Adapter[M]) Close() error {
	if c, ok := a.app.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var _ HostedApp = (*Adapter[struct{}])(nil)
