// Package config loads PeakOS configuration from environment variables.
//
// Every field has a default, so Load succeeds in an empty environment:
//
//	cfg, err := config.Load()
//	viewport := cfg.Shell.Viewport()
//	apps, err := cfg.Shell.AppIDs()
package config
