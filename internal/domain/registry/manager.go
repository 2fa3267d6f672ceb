package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// ErrUnknownApp is returned when an AppID has no registry entry.
var ErrUnknownApp = errors.New("app not registered")

// ContextFunc builds the shell context handed to one app's update.
type ContextFunc func(id types.AppID) host.ShellContext

// Manager is the process table. It is owned by a single session and is not
// safe for concurrent use.
type Manager struct {
	apps map[types.AppID]host.HostedApp
}

// NewManager creates an empty registry
func NewManager() *Manager {
	return &Manager{apps: make(map[types.AppID]host.HostedApp)}
}

// Register stores app under id, replacing and closing any previous entry.
func (m *Manager) Register(id types.AppID, app host.HostedApp) error {
	prev, ok := m.apps[id]
	m.apps[id] = app
	if ok && prev != app {
		if err := prev.Close(); err != nil {
			return fmt.Errorf("failed to close replaced %s: %w", id, err)
		}
	}
	return nil
}

// Unregister removes the entry for id and releases its resources. Removing an
// unregistered app is a no-op.
func (m *Manager) Unregister(id types.AppID) error {
	app, ok := m.apps[id]
	if !ok {
		return nil
	}
	delete(m.apps, id)
	if err := app.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", id, err)
	}
	return nil
}

// Get returns the hosted app for id
func (m *Manager) Get(id types.AppID) (host.HostedApp, bool) {
	app, ok := m.apps[id]
	return app, ok
}

// Has reports whether id is registered.
func (m *Manager) Has(id types.AppID) bool {
	_, ok := m.apps[id]
	return ok
}

// IDs returns the registered apps in AppID order.
func (m *Manager) IDs() []types.AppID {
	ids := make([]types.AppID, 0, len(m.apps))
	for id := range m.apps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of registered apps.
func (m *Manager) Len() int {
	return len(m.apps)
}

// Title returns the app's own window title.
func (m *Manager) Title(id types.AppID) (string, bool) {
	app, ok := m.apps[id]
	if !ok {
		return "", false
	}
	return app.Title(), true
}

// Update broadcasts msg to every registered app in AppID order. Apps that do
// not own msg ignore it. The returned commands are batched.
func (m *Manager) Update(msg host.Msg, ctx ContextFunc) host.Cmd {
	var cmds []host.Cmd
	for _, id := range m.IDs() {
		cmds = append(cmds, m.apps[id].Update(msg, ctx(id)))
	}
	return host.Batch(cmds...)
}

// View renders the app's content. The second result is false when id is not
// registered.
func (m *Manager) View(id types.AppID, theme types.Theme) (host.Node, bool) {
	app, ok := m.apps[id]
	if !ok {
		return host.Node{}, false
	}
	return app.View(theme), true
}

// Stream returns the app's background stream, nil when it has none or is
// not registered.
func (m *Manager) Stream(id types.AppID) host.Sub {
	app, ok := m.apps[id]
	if !ok {
		return nil
	}
	return app.Stream()
}

// LayoutChanged forwards new window geometry to the app.
func (m *Manager) LayoutChanged(id types.AppID, size types.Size) {
	if app, ok := m.apps[id]; ok {
		app.WindowLayoutChanged(size)
	}
}

// Decode turns external JSON input for id into a shell message.
func (m *Manager) Decode(id types.AppID, raw []byte) (host.Msg, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownApp, id)
	}
	msg, err := app.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode input for %s: %w", id, err)
	}
	return msg, nil
}

// Close unregisters every app and returns the joined close errors
func (m *Manager) Close() error {
	var errs []error
	for _, id := range m.IDs() {
		if err := m.Unregister(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
