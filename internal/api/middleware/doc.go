// Package middleware provides the gin middleware shared by the HTTP and
// WebSocket surfaces: CORS and per-client rate limiting.
package middleware
