package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// Process is a running shell attached to a terminal device.
type Process interface {
	io.ReadWriteCloser
	Resize(cols, rows int) error
}

// Starter launches the shell process with an initial size.
type Starter func(cfg Config, cols, rows int) (Process, error)

type ptyProcess struct {
	cmd  *exec.Cmd
	ptmx *os.File
	once sync.Once
}

// StartPTY runs cfg.Shell in a new pseudo-terminal.
func StartPTY(cfg Config, cols, rows int) (Process, error) {
	cfg = cfg.withDefaults()

	cmd := exec.Command(cfg.Shell)
	cmd.Dir = cfg.Dir
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	for key, value := range cfg.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	ptmx, err := pty.StartWithSize(cmd, winsize(cols, rows))
	if err != nil {
		return nil, fmt.Errorf("failed to start PTY: %w", err)
	}
	return &ptyProcess{cmd: cmd, ptmx: ptmx}, nil
}

func (p *ptyProcess) Read(b []byte) (int, error) {
	return p.ptmx.Read(b)
}

func (p *ptyProcess) Write(b []byte) (int, error) {
	return p.ptmx.Write(b)
}

func (p *ptyProcess) Resize(cols, rows int) error {
	return pty.Setsize(p.ptmx, winsize(cols, rows))
}

// Close kills the shell and releases the PTY.
func (p *ptyProcess) Close() error {
	var err error
	p.once.Do(func() {
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
		err = p.ptmx.Close()
		var exitErr *exec.ExitError
		if werr := p.cmd.Wait(); werr != nil && !errors.As(werr, &exitErr) {
			err = errors.Join(err, werr)
		}
	})
	return err
}

func winsize(cols, rows int) *pty.Winsize {
	return &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}
}
