// Package types provides shared data structures for the PeakOS shell.
//
// Core Types:
//   - AppID: closed set of hostable apps, used as the key of every per-app table
//   - Persona: the active shell "reality"
//   - WindowState: geometry, persona and workspace of one open window
//   - Point, Size, Rect: viewport geometry in pixels
//   - SnapKey: keyboard snap bindings
//
// AppID and Persona marshal as their names so frames and API payloads stay
// readable:
//
//	id, err := types.ParseAppID("terminal")   // types.Terminal
//	p, err := types.ParsePersona("Console")  // types.PersonaConsole
package types
