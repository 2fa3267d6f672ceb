// Package server assembles the shell from configuration: the hosted apps, the
// session loop and the HTTP/WebSocket front door.
package server
