// Package http exposes the shell session over a JSON API.
//
// Every command is applied on the session loop and answered with the frame
// that reflects it, so a client never has to poll after issuing a command.
package http
