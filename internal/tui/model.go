package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/compositor"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/session"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// A terminal cell stands for this many viewport pixels.
const (
	cellWidth  = 8
	cellHeight = 16
)

// ErrNoInput is reported when the focused app takes no typed input.
var ErrNoInput = errors.New("focused app takes no typed input")

type mode int

const (
	modeNormal mode = iota
	modeSnap
	modeWorkspace
	modeLaunch
	modeInput
)

type frameMsg struct{ frame compositor.Frame }

type closedMsg struct{}

type errMsg struct{ err error }

// Model is the bubbletea model driving one session loop.
type Model struct {
	ctx         context.Context
	loop        *session.Loop
	frames      <-chan compositor.Frame
	unsubscribe func()

	frame  compositor.Frame
	styles Styles
	width  int
	height int

	mode     mode
	selected int
	launch   int
	input    textinput.Model
	status   string
	quitting bool
}

// New subscribes to loop. Messages are applied with ctx.
func New(ctx context.Context, loop *session.Loop) Model {
	frames, unsubscribe := loop.Subscribe()

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Width = 60

	frame := loop.Frame()
	return Model{
		ctx:         ctx,
		loop:        loop,
		frames:      frames,
		unsubscribe: unsubscribe,
		frame:       frame,
		styles:      NewStyles(frame.Theme),
		input:       ti,
	}
}

// Run starts a full-screen program over loop and blocks until the user
// quits or the loop stops.
func Run(ctx context.Context, loop *session.Loop, opts ...tea.ProgramOption) error {
	m := New(ctx, loop)
	defer m.unsubscribe()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return m.wait()
}

// wait delivers the next published frame.
func (m Model) wait() tea.Cmd {
	frames := m.frames
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return closedMsg{}
		}
		return frameMsg{frame: f}
	}
}

// send applies msg to the session and reports a failure back to the model.
func (m Model) send(msg host.Msg) tea.Cmd {
	loop, ctx := m.loop, m.ctx
	return func() tea.Msg {
		if _, err := loop.Call(ctx, msg); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = msg.frame
		m.styles = NewStyles(msg.frame.Theme)
		if n := len(m.actions()); m.selected >= n {
			m.selected = max(n-1, 0)
		}
		return m, m.wait()

	case closedMsg:
		m.quitting = true
		return m, tea.Quit

	case errMsg:
		m.status = msg.err.Error()
		if errors.Is(msg.err, session.ErrClosed) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, m.send(session.SetViewport{Size: types.Size{
			Width:  float64(msg.Width * cellWidth),
			Height: float64(msg.Height * cellHeight),
		}})

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			m.unsubscribe()
			return m, tea.Quit
		}
		switch m.mode {
		case modeSnap:
			return m.updateSnap(msg)
		case modeWorkspace:
			return m.updateWorkspace(msg)
		case modeLaunch:
			return m.updateLaunch(msg)
		case modeInput:
			return m.updateInput(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	focused, hasFocus := m.focused()

	switch msg.String() {
	case "q":
		m.quitting = true
		m.unsubscribe()
		return m, tea.Quit
	case "tab":
		if n := len(m.actions()); n > 0 {
			m.selected = (m.selected + 1) % n
		}
	case "shift+tab":
		if n := len(m.actions()); n > 0 {
			m.selected = (m.selected + n - 1) % n
		}
	case "enter":
		actions := m.actions()
		if m.selected < len(actions) {
			return m, m.send(actions[m.selected])
		}
	case "]":
		if next, ok := m.nextWindow(); ok {
			m.selected = 0
			return m, m.send(session.FocusApp{App: next})
		}
	case "s":
		m.mode = modeSnap
	case "w":
		m.mode = modeWorkspace
	case "a":
		m.mode = modeLaunch
	case "i":
		if !hasFocus {
			break
		}
		if _, err := inputPayload(focused, ""); err != nil {
			m.status = err.Error()
			break
		}
		m.mode = modeInput
		m.input.Reset()
		cmd := m.input.Focus()
		return m, cmd
	case "m":
		if hasFocus {
			return m, m.send(session.Maximize{App: focused})
		}
	case "x":
		if hasFocus {
			return m, m.send(closeMessage(focused))
		}
	case "r":
		return m, m.send(session.ToggleReveal{})
	case "d":
		return m, m.send(session.ToggleDock{})
	case "t":
		return m, m.send(session.ToggleTheme{})
	case "p":
		return m, m.send(session.SwitchPersona{Persona: nextPersona(m.frame.Persona)})
	case "n":
		if len(m.frame.Notifications) > 0 {
			return m, m.send(session.DismissNotification{ID: m.frame.Notifications[0].ID})
		}
	}
	return m, nil
}

// updateSnap reads one layout key and snaps the focused window with it.
func (m Model) updateSnap(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeNormal
	if msg.Type == tea.KeyEsc {
		return m, nil
	}
	key, ok := window.ParseSnapKey(msg.String())
	if !ok {
		m.status = fmt.Sprintf("no snap layout on %q", msg.String())
		return m, nil
	}
	return m, m.send(session.SnapFocused{Key: key})
}

func (m Model) updateWorkspace(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeNormal
	s := msg.String()
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return m, nil
	}
	return m, m.send(session.SwitchWorkspace{Index: int(s[0] - '1')})
}

func (m Model) updateLaunch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	apps := types.AllApps()
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
	case "up", "k":
		m.launch = (m.launch + len(apps) - 1) % len(apps)
	case "down", "j":
		m.launch = (m.launch + 1) % len(apps)
	case "enter":
		m.mode = modeNormal
		m.selected = 0
		return m, m.send(session.ToggleApp{App: apps[m.launch]})
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.mode = modeNormal
		m.input.Blur()
		focused, ok := m.focused()
		if !ok {
			return m, nil
		}
		raw, err := inputPayload(focused, m.input.Value())
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		loop, ctx := m.loop, m.ctx
		return m, func() tea.Msg {
			if _, err := loop.Input(ctx, focused, raw); err != nil {
				return errMsg{err: err}
			}
			return nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) focused() (types.AppID, bool) {
	if m.frame.Focused == nil {
		return 0, false
	}
	return *m.frame.Focused, true
}

// actions lists the activatable nodes of the focused window in draw order.
func (m Model) actions() []host.Msg {
	focused, ok := m.focused()
	if !ok {
		return nil
	}
	layer, ok := m.frame.Layer(focused)
	if !ok {
		return nil
	}
	var out []host.Msg
	host.Walk(layer.Content, func(n host.Node) bool {
		if n.Action != nil {
			out = append(out, n.Action)
		}
		return true
	})
	return out
}

// nextWindow returns the window below the focused one, wrapping to the top.
func (m Model) nextWindow() (types.AppID, bool) {
	windows := m.frame.Windows()
	if len(windows) < 2 {
		return 0, false
	}
	focused, _ := m.focused()
	for i, l := range windows {
		if l.App == focused {
			return windows[(i+len(windows)-1)%len(windows)].App, true
		}
	}
	return windows[len(windows)-1].App, true
}

func closeMessage(app types.AppID) host.Msg {
	if app == types.Browser {
		return session.CloseBrowser{}
	}
	return session.CloseApp{App: app}
}

func nextPersona(p types.Persona) types.Persona {
	all := types.AllPersonas()
	for i, q := range all {
		if q == p {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// inputPayload encodes a typed line as input for app.
func inputPayload(app types.AppID, line string) ([]byte, error) {
	var payload map[string]string
	switch app {
	case types.Terminal:
		payload = map[string]string{"line": line}
	case types.Browser:
		payload = map[string]string{"url": line}
	case types.Editor:
		payload = map[string]string{"append": line + "\n"}
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoInput, app)
	}
	return sonic.Marshal(payload)
}
