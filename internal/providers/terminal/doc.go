// Package terminal hosts an interactive shell in a PTY as a shell app.
//
// The PTY process starts lazily on the first stream activation and keeps
// running while the window is hidden; its output accumulates in a ring buffer
// and is delivered the next time the stream is active. Escape sequences are
// stripped and the rendered scrollback is capped at MaxContent characters.
// Window size changes resize the PTY using 8x16 pixel cells.
//
// Example Usage:
//
//	term := terminal.New(terminal.Config{Shell: "/bin/zsh"}, logger)
//	sess.Register(types.Terminal, host.Host[terminal.Msg](types.Terminal, term))
package terminal
