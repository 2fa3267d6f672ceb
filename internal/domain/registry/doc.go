// Package registry holds the process table of hosted apps and the static app
// catalog.
//
// Components:
//   - Manager: AppID -> host.HostedApp table, dispatching update, view and
//     background-stream calls through the adapters
//   - Catalog: display names, fallback titles, default window sizes and dock
//     pinning, loaded from an embedded YAML file or an override on disk
//
// Registration is idempotent per AppID. Unregistering must be preceded by
// closing the app's window; the two tables are not synchronized here.
//
// Example Usage:
//
//	reg := registry.NewManager()
//	reg.Register(types.Terminal, host.Host(types.Terminal, term))
//	node, ok := reg.View(types.Terminal, theme)
package registry
