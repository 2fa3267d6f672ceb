// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output
//
// The terminal front-end logs to a file so output does not corrupt the screen.
//
// Example Usage:
//
//	logger, _ := logging.New(logging.Config{Level: "info"})
//	logger.Info("Server starting", zap.String("port", "8000"))
//	logger.Debug("Stream activated", logging.App(types.Terminal))
package logging
