// Package host defines the boundary between the shell and the apps it hosts.
//
// Every app is written against its own private message type M and implements
// App[M]. The shell only ever sees the erased HostedApp surface, produced by
// wrapping an App[M] in an Adapter with a lift (M -> Msg) and lower
// (Msg -> M, ok) pair. Lower misses are the normal filtering behaviour of the
// shared message bus and are dropped silently.
//
// Example Usage:
//
//	hosted := host.Host[terminal.Msg](types.Terminal, terminal.New(cfg))
//	cmd := hosted.Update(host.AppMsg{App: types.Terminal, Payload: terminal.Input{Line: "ls"}}, ctx)
package host
