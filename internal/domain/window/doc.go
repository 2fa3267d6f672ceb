// Package window owns window geometry, persona/workspace placement and the
// z-order stack of the shell.
//
// The manager is not safe for concurrent use. It is owned by a single session
// and mutated only from that session's update loop.
//
// Invariants:
//   - at most one WindowState per AppID
//   - the z-order holds exactly the AppIDs that have a WindowState, once each
//   - the last z-order entry is the topmost (focused) window
//
// Example Usage:
//
//	wm := window.NewManager(types.Size{Width: 1920, Height: 1080})
//	wm.EnsureOpen(types.Terminal, 800, 600, types.PersonaDesktop, 0)
//	wm.Snap(types.Terminal, types.SnapLeft, true)
package window
