// Package session holds all mutable shell state and the single update entry
// point of the shell.
//
// A Session owns the window manager, the registry, the active persona and
// workspace, the reveal and dock flags, pointer drag/resize state and the
// notification tray. Every mutation happens inside Session.Update, called from
// exactly one goroutine. After each message the set of running background
// streams is recomputed: an app's stream runs iff its window exists, is
// visible, and the app is registered with a non-nil stream. Hidden apps keep
// their state; only their stream is cancelled.
//
// Loop drives a Session from an inbox channel for the HTTP/WebSocket server.
// The terminal front-end drives the same Session from the bubbletea loop.
//
// Example Usage:
//
//	s := session.New(session.Options{Viewport: types.Size{Width: 1920, Height: 1080}})
//	s.Register(types.Terminal, host.Host(types.Terminal, term))
//	loop := session.NewLoop(s, logger)
//	go loop.Run(ctx)
//	frame, err := loop.Call(ctx, session.OpenApp{App: types.Terminal})
package session
