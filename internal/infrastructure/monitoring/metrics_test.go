package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestInstancesDoNotCollide(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.FrameComposed(time.Millisecond, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.FramesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.PlaceholderLayers))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.FramesTotal))
}

func TestShellRecorder(t *testing.T) {
	m := NewMetrics()

	m.MessageHandled("open_app")
	m.MessageHandled("open_app")
	m.MessageHandled("snap")
	m.SetWindowsOpen(3)
	m.SetStreamsActive(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesTotal.WithLabelValues("open_app")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.WindowsOpen))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StreamsActive))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.Messages)
	assert.Equal(t, int64(3), snap.WindowsOpen)
	assert.Equal(t, int64(1), snap.StreamsActive)
}

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	m := NewMetrics()
	router := gin.New()
	router.Use(RequestID(), Middleware(m))
	router.GET("/apps/:app", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for _, path := range []string{"/apps/terminal", "/apps/editor", "/missing"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/apps/:app", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestHandlerExposesShellMetrics(t *testing.T) {
	m := NewMetrics()
	m.IncWSConnections()
	m.RecordWSMessage("out", "frame")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	for _, name := range []string{"peak_ws_connections 1", "peak_ws_messages_total", "peak_uptime_seconds", "go_goroutines"} {
		assert.True(t, strings.Contains(body, name), "missing %s", name)
	}

	m.DecWSConnections()
	assert.Equal(t, int64(0), m.Snapshot().ActiveConnections)
}
