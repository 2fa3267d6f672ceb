package session

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/compositor"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// MaxNotifications bounds the notification tray; the oldest entry is dropped.
const MaxNotifications = 8

var notifyPolicy = bluemonday.StrictPolicy()

// shellContext is the read-only view of the session handed to an app during
// its update.
type shellContext struct {
	s  *Session
	id types.AppID
}

func (s *Session) contextFor(id types.AppID) host.ShellContext {
	return &shellContext{s: s, id: id}
}

func (c *shellContext) App() types.AppID {
	return c.id
}

// Notify queues a notification. Markup is stripped from title and body.
func (c *shellContext) Notify(title, body string) {
	c.s.notify(c.id, title, body)
}

func (c *shellContext) RootPosition() types.Point {
	return c.s.root
}

func (c *shellContext) Bounds() (types.Rect, bool) {
	w, ok := c.s.windows.Get(c.id)
	if !ok {
		return types.Rect{}, false
	}
	return w.Bounds(), true
}

func (s *Session) notify(id types.AppID, title, body string) {
	s.nextNote++
	n := compositor.Notification{
		ID:    s.nextNote,
		App:   id,
		Title: sanitize(title),
		Body:  sanitize(body),
	}
	s.notifications = append(s.notifications, n)
	if len(s.notifications) > MaxNotifications {
		s.notifications = s.notifications[len(s.notifications)-MaxNotifications:]
	}
	s.log.Info("notification", logging.App(id), zap.String("title", n.Title), zap.String("body", n.Body))
}

func (s *Session) dismiss(id uint64) {
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// Notifications returns the queued notifications, oldest first.
func (s *Session) Notifications() []compositor.Notification {
	out := make([]compositor.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(notifyPolicy.Sanitize(s)))
}
