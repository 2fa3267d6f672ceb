package editor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// ErrUnknownCommand is returned by Decode for input with no recognized field.
var ErrUnknownCommand = errors.New("unknown editor command")

// Msg is the editor's private message type.
type Msg interface{ editorMsg() }

type (
	// SetText replaces the buffer.
	SetText struct{ Text string }
	// Append adds text to the end of the buffer.
	Append struct{ Text string }
	// Save writes the buffer to the backing file.
	Save struct{}
	// Saved reports a completed save.
	Saved struct {
		Path  string
		Bytes int
	}
	// SaveFailed reports a save error.
	SaveFailed struct{ Err error }
	// Load reads the backing file into the buffer.
	Load struct{}
	// Loaded carries a decoded file.
	Loaded struct{ Doc Document }
	// LoadFailed reports a load error.
	LoadFailed struct{ Err error }
)

func (SetText) editorMsg()    {}
func (Append) editorMsg()     {}
func (Save) editorMsg()       {}
func (Saved) editorMsg()      {}
func (SaveFailed) editorMsg() {}
func (Load) editorMsg()       {}
func (Loaded) editorMsg()     {}
func (LoadFailed) editorMsg() {}

// Editor is the hosted text editor.
type Editor struct {
	path string
	log  *logging.Logger

	text    string
	dirty   bool
	mime    string
	charset string
	status  string
}

// New creates an editor backed by path. An empty path disables Save and Load.
func New(path string, log *logging.Logger) *Editor {
	if log == nil {
		log = logging.NewNop()
	}
	return &Editor{
		path:    path,
		log:     log.Named("editor"),
		mime:    "text/plain",
		charset: "utf-8",
	}
}

// Text returns the buffer contents.
func (e *Editor) Text() string { return e.text }

// Dirty reports unsaved changes.
func (e *Editor) Dirty() bool { return e.dirty }

// Status returns the last status line.
func (e *Editor) Status() string { return e.status }

func (e *Editor) Title() string {
	return "Editor"
}

func (e *Editor) Update(msg Msg, ctx host.ShellContext) host.Task[Msg] {
	switch msg := msg.(type) {
	case SetText:
		e.text = msg.Text
		e.dirty = true
	case Append:
		e.text += msg.Text
		e.dirty = true
	case Save:
		if e.path == "" {
			e.fail(ctx, "Save failed", ErrNoPath)
			return nil
		}
		return e.save(e.path, e.text)
	case Saved:
		e.dirty = false
		e.status = fmt.Sprintf("Saved %d bytes", msg.Bytes)
		e.log.Info("Document saved", zap.String("path", msg.Path), zap.Int("bytes", msg.Bytes))
		ctx.Notify("Editor", "Saved "+filepath.Base(msg.Path))
	case SaveFailed:
		e.fail(ctx, "Save failed", msg.Err)
	case Load:
		if e.path == "" {
			e.fail(ctx, "Open failed", ErrNoPath)
			return nil
		}
		return e.load(e.path)
	case Loaded:
		e.text = msg.Doc.Text
		e.mime = msg.Doc.MIME
		e.charset = msg.Doc.Charset
		e.dirty = false
		e.status = fmt.Sprintf("Opened %s (%s)", filepath.Base(e.path), e.charset)
	case LoadFailed:
		e.fail(ctx, "Open failed", msg.Err)
	}
	return nil
}

func (e *Editor) fail(ctx host.ShellContext, what string, err error) {
	e.status = fmt.Sprintf("%s: %v", what, err)
	e.log.Warn(what, zap.String("path", e.path), zap.Error(err))
	ctx.Notify("Editor", e.status)
}

func (e *Editor) save(path, text string) host.Task[Msg] {
	return func(_ context.Context, emit func(Msg)) {
		n, err := WriteDocument(path, text)
		if err != nil {
			emit(SaveFailed{Err: err})
			return
		}
		emit(Saved{Path: path, Bytes: n})
	}
}

func (e *Editor) load(path string) host.Task[Msg] {
	return func(_ context.Context, emit func(Msg)) {
		doc, err := ReadDocument(path)
		if err != nil {
			emit(LoadFailed{Err: err})
			return
		}
		emit(Loaded{Doc: doc})
	}
}

func (e *Editor) View(theme types.Theme) host.Node {
	name := "untitled"
	if e.path != "" {
		name = filepath.Base(e.path)
	}
	if e.dirty {
		name += " *"
	}

	header := host.Row(
		host.Text(name).WithProp("color", theme.Accent),
		host.Button("Open", Load{}),
		host.Button("Save", Save{}),
	)
	body := host.Mono(e.text).
		WithProp("color", theme.Text).
		WithProp("background", theme.Background).
		WithProp("editable", true)

	footer := host.Text(fmt.Sprintf("%s · %s", e.mime, e.charset))
	if e.status != "" {
		footer = host.Text(e.status)
	}
	return host.Column(header, body, footer.WithProp("color", theme.Border))
}

// Stream returns nil: the editor has no background work.
func (e *Editor) Stream() host.Stream[Msg] {
	return nil
}

type inputPayload struct {
	Text   *string `json:"text"`
	Append *string `json:"append"`
	Save   bool    `json:"save"`
	Load   bool    `json:"load"`
}

// Decode accepts {"text": ...}, {"append": ...}, {"save": true} or {"load": true}.
func (e *Editor) Decode(raw []byte) (Msg, error) {
	var p inputPayload
	if err := sonic.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid editor input: %w", err)
	}
	switch {
	case p.Text != nil:
		return SetText{Text: *p.Text}, nil
	case p.Append != nil:
		return Append{Text: *p.Append}, nil
	case p.Save:
		return Save{}, nil
	case p.Load:
		return Load{}, nil
	}
	return nil, ErrUnknownCommand
}

var (
	_ host.App[Msg]     = (*Editor)(nil)
	_ host.Decoder[Msg] = (*Editor)(nil)
)
