// Package ws streams shell frames to WebSocket clients.
//
// Each connection subscribes to the session loop and receives every new frame
// as {"type":"frame","frame":...}. Slow clients skip intermediate frames. A
// client drives the shell with {"type":"command",...} messages, which are
// acknowledged with the sequence number of the frame they produced.
package ws
