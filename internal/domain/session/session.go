package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/compositor"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/registry"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// ErrClosed is returned once a session or loop has shut down.
var ErrClosed = errors.New("session closed")

// DefaultWorkspaces is the number of workspaces per persona.
const DefaultWorkspaces = 4

// ThemeSource resolves theme tokens for a persona.
type ThemeSource interface {
	Theme(persona types.Persona, light bool) types.Theme
}

// Recorder receives shell metrics.
type Recorder interface {
	MessageHandled(kind string)
	FrameComposed(d time.Duration, placeholders int)
	SetWindowsOpen(n int)
	SetStreamsActive(n int)
}

type nopRecorder struct{}

func (nopRecorder) MessageHandled(string)            {}
func (nopRecorder) FrameComposed(time.Duration, int) {}
func (nopRecorder) SetWindowsOpen(int)               {}
func (nopRecorder) SetStreamsActive(int)             {}

type staticTheme struct{}

func (staticTheme) Theme(_ types.Persona, light bool) types.Theme {
	if light {
		return types.Theme{Name: "Light", Light: true, Text: "#1a1a1a", Background: "#ffffff", Border: "#e0e0e0", Accent: "#3b82f6"}
	}
	return types.Theme{Name: "Dark", Text: "#ffffff", Background: "#1a1a1a", Border: "#404040", Accent: "#3b82f6"}
}

// Options configures a new session. Zero values fall back to defaults.
type Options struct {
	Viewport     types.Size
	Persona      types.Persona
	Workspace    int
	Workspaces   int
	DockVisible  bool
	Light        bool
	RootPosition types.Point
	Catalog      *registry.Catalog
	Themes       ThemeSource
	Logger       *logging.Logger
	Metrics      Recorder
}

// Session is the single owned aggregate of shell state.
type Session struct {
	log        *logging.Logger
	metrics    Recorder
	themes     ThemeSource
	catalog    *registry.Catalog
	windows    *window.Manager
	registry   *registry.Manager
	compositor *compositor.Compositor

	persona     types.Persona
	workspace   int
	workspaces  int
	revealed    bool
	dockVisible bool
	light       bool
	root        types.Point
	seq         uint64

	pointer *Drag
	layout  map[types.AppID]types.Size

	notifications []compositor.Notification
	nextNote      uint64

	streams  map[types.AppID]*activeStream
	gen      uint64
	dispatch func(host.Msg)
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	closed   bool
}

// New creates a session with no registered apps and no open windows.
func New(opts Options) *Session {
	if opts.Workspaces <= 0 {
		opts.Workspaces = DefaultWorkspaces
	}
	if opts.Workspace < 0 || opts.Workspace >= opts.Workspaces {
		opts.Workspace = 0
	}
	if opts.Catalog == nil {
		opts.Catalog = registry.DefaultCatalog()
	}
	if opts.Themes == nil {
		opts.Themes = staticTheme{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = nopRecorder{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		log:         opts.Logger.Named("session"),
		metrics:     opts.Metrics,
		themes:      opts.Themes,
		catalog:     opts.Catalog,
		windows:     window.NewManager(opts.Viewport),
		registry:    registry.NewManager(),
		compositor:  compositor.New(opts.Catalog),
		persona:     opts.Persona,
		workspace:   opts.Workspace,
		workspaces:  opts.Workspaces,
		dockVisible: opts.DockVisible,
		light:       opts.Light,
		root:        opts.RootPosition,
		layout:      make(map[types.AppID]types.Size),
		streams:     make(map[types.AppID]*activeStream),
		dispatch:    func(host.Msg) {},
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetDispatch sets where stream output is delivered. It must be called
// before Init; output is expected to come back through Update.
func (s *Session) SetDispatch(fn func(host.Msg)) {
	if fn == nil {
		fn = func(host.Msg) {}
	}
	s.dispatch = fn
}

// Init starts the streams of apps that are already visible.
func (s *Session) Init() {
	s.settle()
}

// Register adds or replaces a hosted app.
func (s *Session) Register(id types.AppID, app host.HostedApp) error {
	if s.closed {
		return ErrClosed
	}
	err := s.registry.Register(id, app)
	delete(s.layout, id)
	s.settle()
	s.log.Debug("app registered", logging.App(id), zap.String("title", app.Title()))
	return err
}

// Unregister closes the app's window and removes it from the registry.
func (s *Session) Unregister(id types.AppID) error {
	s.closeWindow(id)
	s.settle()
	return s.registry.Unregister(id)
}

// Update applies one message and returns the command the caller must run.
func (s *Session) Update(msg host.Msg) host.Cmd {
	if s.closed || msg == nil {
		return nil
	}
	s.metrics.MessageHandled(kindOf(msg))
	cmd := s.handle(msg)
	s.seq++
	s.settle()
	return cmd
}

// Input decodes external JSON for an app and applies it.
func (s *Session) Input(id types.AppID, raw []byte) (host.Cmd, error) {
	if s.closed {
		return nil, ErrClosed
	}
	msg, err := s.registry.Decode(id, raw)
	if err != nil {
		return nil, err
	}
	return s.Update(msg), nil
}

func (s *Session) handle(msg host.Msg) host.Cmd {
	switch m := msg.(type) {
	case OpenApp:
		s.open(m.App)
	case FocusApp:
		if s.windows.IsOpen(m.App) {
			s.windows.Focus(m.App)
		}
	case CloseApp:
		s.closeWindow(m.App)
	case ToggleApp:
		s.toggle(m.App)
	case CloseBrowser:
		s.closeWindow(types.Browser)
		s.registry.LayoutChanged(types.Browser, types.Size{})
	case Maximize:
		if s.windows.IsOpen(m.App) {
			s.windows.Focus(m.App)
			s.windows.Snap(m.App, types.SnapMaximize, s.dockVisible)
		}
	case SnapFocused:
		if id, ok := s.windows.TopVisible(s.persona, s.workspace); ok {
			s.windows.Snap(id, m.Key, s.dockVisible)
		}
	case SwitchWorkspace:
		if m.Index >= 0 && m.Index < s.workspaces {
			s.workspace = m.Index
		}
	case SwitchPersona:
		if m.Persona.Valid() {
			s.persona = m.Persona
		}
	case ToggleReveal:
		s.revealed = !s.revealed
	case ToggleDock:
		s.dockVisible = !s.dockVisible
	case ToggleSticky:
		if w, ok := s.windows.Get(m.App); ok {
			s.windows.SetSticky(m.App, !w.Sticky)
		}
	case MoveToWorkspace:
		if m.Workspace >= 0 && m.Workspace < s.workspaces {
			s.windows.MoveToWorkspace(m.App, s.persona, m.Workspace)
		}
	case SetViewport:
		s.windows.SetViewport(m.Size)
	case PointerDown:
		s.pointerDown(m)
	case PointerMove:
		s.pointerMove(m)
	case PointerUp:
		s.pointer = nil
	case ToggleTheme:
		s.light = !s.light
	case DismissNotification:
		s.dismiss(m.ID)
	case streamMsg:
		return s.streamOutput(m)
	case streamEnded:
		s.streamFinished(m)
	default:
		return s.registry.Update(msg, s.contextFor)
	}
	return nil
}

func (s *Session) open(id types.AppID) {
	s.revealed = false
	if w, ok := s.windows.Get(id); ok && !window.IsVisible(w, s.persona, s.workspace) {
		s.persona, s.workspace = w.Persona, w.Workspace
	}
	size := s.catalog.DefaultSize(id)
	if s.windows.EnsureOpen(id, size.Width, size.Height, s.persona, s.workspace) {
		s.log.Debug("window opened", logging.App(id), logging.Persona(s.persona), logging.Workspace(s.workspace))
	}
}

func (s *Session) toggle(id types.AppID) {
	w, ok := s.windows.Get(id)
	switch {
	case !ok:
		s.open(id)
	case !window.IsVisible(w, s.persona, s.workspace):
		s.revealed = false
		s.persona, s.workspace = w.Persona, w.Workspace
		s.windows.Focus(id)
	default:
		s.revealed = false
		s.closeWindow(id)
	}
}

func (s *Session) closeWindow(id types.AppID) {
	if !s.windows.Close(id) {
		return
	}
	if s.pointer != nil && s.pointer.Owner == id {
		s.pointer = nil
	}
	delete(s.layout, id)
	s.log.Debug("window closed", logging.App(id))
}

// settle runs after every state change: layout hooks, then stream gating.
func (s *Session) settle() {
	if s.closed {
		return
	}
	s.syncLayout()
	s.reconcileStreams()
	s.metrics.SetWindowsOpen(s.windows.Len())
}

// syncLayout tells apps about window sizes that changed since last time.
func (s *Session) syncLayout() {
	open := make(map[types.AppID]bool, s.windows.Len())
	for _, w := range s.windows.Windows() {
		open[w.Owner] = true
		size := w.Size()
		if prev, ok := s.layout[w.Owner]; ok && prev == size {
			continue
		}
		s.layout[w.Owner] = size
		s.registry.LayoutChanged(w.Owner, size)
	}
	for id := range s.layout {
		if !open[id] {
			delete(s.layout, id)
		}
	}
}

// Frame composes the current state.
func (s *Session) Frame() compositor.Frame {
	start := time.Now()
	notes := make([]compositor.Notification, len(s.notifications))
	copy(notes, s.notifications)

	frame := s.compositor.Compose(compositor.Scene{
		Seq:           s.seq,
		Windows:       s.windows,
		Registry:      s.registry,
		Persona:       s.persona,
		Workspace:     s.workspace,
		Revealed:      s.revealed,
		DockVisible:   s.dockVisible,
		Theme:         s.Theme(),
		Notifications: notes,
	})

	placeholders := 0
	for _, l := range frame.Windows() {
		if l.Placeholder {
			placeholders++
		}
	}
	s.metrics.FrameComposed(time.Since(start), placeholders)
	return frame
}

// Close cancels every stream, waits for them to return and releases all
// registered apps.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	s.wg.Wait()
	s.streams = make(map[types.AppID]*activeStream)
	s.metrics.SetStreamsActive(0)
	if err := s.registry.Close(); err != nil {
		return fmt.Errorf("failed to close apps: %w", err)
	}
	return nil
}

func (s *Session) Persona() types.Persona { return s.persona }

func (s *Session) Workspace() int { return s.workspace }

func (s *Session) Workspaces() int { return s.workspaces }

func (s *Session) Revealed() bool { return s.revealed }

func (s *Session) DockVisible() bool { return s.dockVisible }

func (s *Session) Catalog() *registry.Catalog { return s.catalog }

// Theme returns the active token set.
func (s *Session) Theme() types.Theme {
	return s.themes.Theme(s.persona, s.light)
}

// Window returns the window state of id.
func (s *Session) Window(id types.AppID) (types.WindowState, bool) {
	return s.windows.Get(id)
}

// Windows returns every open window sorted by AppID.
func (s *Session) Windows() []types.WindowState {
	return s.windows.Windows()
}

// ZOrder returns the stacking order, back to front.
func (s *Session) ZOrder() []types.AppID {
	return s.windows.ZOrder()
}

// Visible reports whether id's window is shown right now.
func (s *Session) Visible(id types.AppID) bool {
	return s.windows.Visible(id, s.persona, s.workspace)
}

// Registered reports whether id has a registry entry.
func (s *Session) Registered(id types.AppID) bool {
	return s.registry.Has(id)
}

// Dragging returns the active drag or resize.
func (s *Session) Dragging() (Drag, bool) {
	if s.pointer == nil {
		return Drag{}, false
	}
	return *s.pointer, true
}
