package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/id"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

const (
	// MaxContent caps the rendered scrollback, in bytes.
	MaxContent = 10000

	// DefaultBufferSize is the ring buffer capacity for unread PTY output.
	DefaultBufferSize = 64 * 1024

	cellWidth  = 8
	cellHeight = 16

	defaultCols = 100
	defaultRows = 37
)

// ErrEmptyInput is returned by Decode for a payload with neither a line nor a command.
var ErrEmptyInput = errors.New("terminal input has no line")

// Msg is the Terminal's private message type.
type Msg interface{ terminalMsg() }

// Output carries raw PTY output.
type Output struct{ Data string }

// Input writes a line to the shell.
type Input struct{ Line string }

// Exited reports that the shell process ended.
type Exited struct{ Err error }

// Failed reports a write that did not reach the shell.
type Failed struct{ Err error }

// Clear empties the scrollback.
type Clear struct{}

func (Output) terminalMsg() {}
func (Input) terminalMsg()  {}
func (Exited) terminalMsg() {}
func (Failed) terminalMsg() {}
func (Clear) terminalMsg()  {}

// Config configures the shell process.
type Config struct {
	Shell      string
	Dir        string
	Env        map[string]string
	BufferSize int
}

func (c Config) withDefaults() Config {
	if c.Shell == "" {
		c.Shell = os.Getenv("SHELL")
		if c.Shell == "" {
			c.Shell = "/bin/bash"
		}
	}
	if c.Dir == "" {
		c.Dir = os.Getenv("HOME")
		if c.Dir == "" {
			c.Dir = "/tmp"
		}
	}
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	return c
}

// Terminal is a shell app backed by a PTY.
type Terminal struct {
	id    id.TerminalID
	cfg   Config
	start Starter
	log   *logging.Logger
	buf   *Buffer

	mu      sync.Mutex
	proc    Process
	exited  chan struct{}
	exitErr error
	cols    int
	rows    int
	closed  bool
	notify  chan struct{}
	readers sync.WaitGroup

	// content and pending are owned by the update goroutine. pending holds
	// an escape sequence cut off at the end of the last chunk.
	content string
	pending string
}

// New creates a Terminal that starts its shell with StartPTY.
func New(cfg Config, log *logging.Logger) *Terminal {
	return NewWithStarter(cfg, StartPTY, log)
}

// NewWithStarter creates a Terminal with a custom process starter.
func NewWithStarter(cfg Config, start Starter, log *logging.Logger) *Terminal {
	if log == nil {
		log = logging.NewNop()
	}
	cfg = cfg.withDefaults()
	tid := id.NewTerminalID()
	return &Terminal{
		id:     tid,
		cfg:    cfg,
		start:  start,
		log:    log.Named("terminal").With(zap.String("terminal_id", tid.String())),
		buf:    NewBuffer(cfg.BufferSize),
		cols:   defaultCols,
		rows:   defaultRows,
		notify: make(chan struct{}, 1),
	}
}

// ID returns the terminal session identifier.
func (t *Terminal) ID() id.TerminalID {
	return t.id
}

// Content returns the rendered scrollback.
func (t *Terminal) Content() string {
	return t.content
}

func (t *Terminal) Title() string {
	return "Terminal"
}

func (t *Terminal) Update(msg Msg, ctx host.ShellContext) host.Task[Msg] {
	switch m := msg.(type) {
	case Output:
		t.appendChunk(m.Data)
	case Input:
		return t.write(m.Line)
	case Exited:
		t.pending = ""
		if m.Err != nil {
			t.appendOutput(fmt.Sprintf("\n[process exited: %v]\n", m.Err))
		} else {
			t.appendOutput("\n[process exited]\n")
		}
	case Failed:
		t.appendOutput(fmt.Sprintf("\n[write failed: %v]\n", m.Err))
		ctx.Notify("Terminal", m.Err.Error())
	case Clear:
		t.content = ""
	}
	return nil
}

// write returns a task that sends line to the shell, starting it if needed.
func (t *Terminal) write(line string) host.Task[Msg] {
	return func(_ context.Context, emit func(Msg)) {
		proc, _, err := t.ensureStarted()
		if err == nil {
			_, err = io.WriteString(proc, line+"\n")
		}
		if err != nil {
			t.log.Warn("Failed to write to shell", zap.Error(err))
			emit(Failed{Err: err})
		}
	}
}

func (t *Terminal) View(theme types.Theme) host.Node {
	header := host.Row(
		host.Text(t.cfg.Shell).WithProp("color", theme.Accent),
		host.Button("Clear", Clear{}),
	)
	body := host.Mono(t.content).
		WithProp("color", theme.Text).
		WithProp("background", theme.Background)
	return host.Column(header, body)
}

// Stream starts the shell on first activation and forwards its output until
// ctx is done or the process exits. A shell that has exited is restarted on
// the next activation.
func (t *Terminal) Stream() host.Stream[Msg] {
	return func(ctx context.Context, emit func(Msg)) {
		_, exited, err := t.ensureStarted()
		if err != nil {
			t.log.Error("Failed to start shell", zap.Error(err))
			emit(Exited{Err: err})
			return
		}

		for {
			if data := t.buf.ReadAll(); len(data) > 0 {
				emit(Output{Data: string(data)})
			}
			select {
			case <-ctx.Done():
				return
			case <-t.notify:
			case <-exited:
				if data := t.buf.ReadAll(); len(data) > 0 {
					emit(Output{Data: string(data)})
				}
				emit(Exited{Err: t.exitError()})
				return
			}
		}
	}
}

// WindowLayoutChanged resizes the PTY to the window's cell grid. A zero size
// means the window closed and is ignored.
func (t *Terminal) WindowLayoutChanged(size types.Size) {
	cols, rows := int(size.Width/cellWidth), int(size.Height/cellHeight)
	if cols <= 0 || rows <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.cols, t.rows = cols, rows
	if t.proc == nil {
		return
	}
	if err := t.proc.Resize(cols, rows); err != nil {
		t.log.Debug("Failed to resize PTY", zap.Error(err))
	}
}

// Size returns the current PTY grid.
func (t *Terminal) Size() (cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cols, t.rows
}

type inputPayload struct {
	Line  *string `json:"line"`
	Clear bool    `json:"clear"`
}

// Decode accepts {"line": "..."} or {"clear": true}.
func (t *Terminal) Decode(raw []byte) (Msg, error) {
	var p inputPayload
	if err := sonic.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid terminal input: %w", err)
	}
	switch {
	case p.Clear:
		return Clear{}, nil
	case p.Line != nil:
		return Input{Line: *p.Line}, nil
	}
	return nil, ErrEmptyInput
}

// Close kills the shell and waits for its reader to stop.
func (t *Terminal) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	proc := t.proc
	t.proc = nil
	t.mu.Unlock()

	var err error
	if proc != nil {
		err = proc.Close()
	}
	t.readers.Wait()
	return err
}

func (t *Terminal) ensureStarted() (Process, <-chan struct{}, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, nil, os.ErrClosed
	}
	if t.proc != nil && !isDone(t.exited) {
		return t.proc, t.exited, nil
	}
	if t.proc != nil {
		_ = t.proc.Close()
	}

	proc, err := t.start(t.cfg, t.cols, t.rows)
	if err != nil {
		return nil, nil, err
	}
	t.proc = proc
	t.exited = make(chan struct{})
	t.exitErr = nil

	t.readers.Add(1)
	go t.readLoop(proc, t.exited)

	t.log.Info("Shell started",
		zap.String("shell", t.cfg.Shell),
		zap.Int("cols", t.cols),
		zap.Int("rows", t.rows))
	return proc, t.exited, nil
}

func (t *Terminal) readLoop(proc Process, exited chan struct{}) {
	defer t.readers.Done()

	chunk := make([]byte, 4096)
	for {
		n, err := proc.Read(chunk)
		if n > 0 {
			_, _ = t.buf.Write(chunk[:n])
			select {
			case t.notify <- struct{}{}:
			default:
			}
		}
		if err != nil {
			t.mu.Lock()
			if !isExitError(err) {
				t.exitErr = err
			}
			close(exited)
			t.mu.Unlock()
			t.log.Debug("Shell output closed", zap.Error(err))
			return
		}
	}
}

func (t *Terminal) exitError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exitErr
}

// appendChunk appends raw PTY output. A trailing escape sequence that is not
// complete yet is held back until the next chunk finishes it.
func (t *Terminal) appendChunk(data string) {
	data = t.pending + data
	data, t.pending = splitIncomplete(data)
	if len(t.pending) > maxPending {
		data, t.pending = data+t.pending, ""
	}
	t.appendOutput(data)
}

func (t *Terminal) appendOutput(data string) {
	text := ansi.Strip(data)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "")

	content := t.content + text
	if len(content) > MaxContent {
		content = content[len(content)-MaxContent:]
		for len(content) > 0 && !utf8.RuneStart(content[0]) {
			content = content[1:]
		}
	}
	t.content = content
}

// maxPending bounds a held-back sequence; longer ones are stripped as is.
const maxPending = 4096

// splitIncomplete cuts s before an escape sequence that runs off its end.
func splitIncomplete(s string) (string, string) {
	for i := 0; i < len(s); i++ {
		if s[i] != ansi.ESC {
			continue
		}
		end := sequenceEnd(s, i)
		if end < 0 {
			return s[:i], s[i:]
		}
		i = end - 1
	}
	return s, ""
}

// sequenceEnd returns the index just past the escape sequence starting at
// s[i], or -1 when s ends first.
func sequenceEnd(s string, i int) int {
	if i+1 >= len(s) {
		return -1
	}
	switch s[i+1] {
	case '[':
		for j := i + 2; j < len(s); j++ {
			if s[j] >= 0x40 && s[j] <= 0x7e {
				return j + 1
			}
		}
	case ']', 'P', '_', '^', 'X':
		for j := i + 2; j < len(s); j++ {
			switch {
			case s[j] == ansi.BEL:
				return j + 1
			case s[j] == ansi.ESC && j+1 < len(s) && s[j+1] == '\\':
				return j + 2
			}
		}
	default:
		j := i + 1
		for j < len(s) && s[j] >= 0x20 && s[j] <= 0x2f {
			j++
		}
		if j < len(s) {
			return j + 1
		}
	}
	return -1
}

func isDone(ch chan struct{}) bool {
	if ch == nil {
		return true
	}
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// isExitError reports whether err is the normal end of a PTY stream.
func isExitError(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, syscall.EIO)
}

var (
	_ host.App[Msg]     = (*Terminal)(nil)
	_ host.Decoder[Msg] = (*Terminal)(nil)
	_ host.LayoutAware  = (*Terminal)(nil)
	_ io.Closer         = (*Terminal)(nil)
)
