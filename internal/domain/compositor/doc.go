// Package compositor assembles one frame of layered output from the window
// manager and the registry.
//
// The first layer is always the background. Every visible window follows in
// z-order, wrapped in chrome. Unregistered apps render the "UNSUPPORTED"
// placeholder instead of failing the frame.
package compositor
