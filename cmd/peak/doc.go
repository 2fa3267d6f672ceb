// Package main is the entry point for the PeakOS shell backend.
//
// The shell hosts a fixed set of apps in a persona- and workspace-aware
// window manager and exposes the composed output two ways:
//
//	peak serve   HTTP + WebSocket API for web front-ends
//	peak tui     full-screen terminal front-end
//
// Configuration:
//   - Environment variables (PEAK_*, SERVER_*, LOG_*, ...)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
