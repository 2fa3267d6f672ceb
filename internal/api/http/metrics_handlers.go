package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/session"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// ShellSummary is the live session state reported next to the counters.
type ShellSummary struct {
	Persona       types.Persona `json:"persona"`
	Workspace     int           `json:"workspace"`
	Revealed      bool          `json:"revealed"`
	DockVisible   bool          `json:"dock_visible"`
	Windows       int           `json:"windows"`
	ActiveStreams []types.AppID `json:"active_streams"`
}

// MetricsReport combines the metric snapshot and the shell summary.
type MetricsReport struct {
	Timestamp time.Time                   `json:"timestamp"`
	Metrics   *monitoring.MetricsSnapshot `json:"metrics,omitempty"`
	Shell     ShellSummary                `json:"shell"`
}

// Metrics serves the Prometheus exposition.
func (h *Handlers) Metrics(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "metrics disabled"})
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// MetricsJSON reports counters and live shell state as JSON.
func (h *Handlers) MetricsJSON(c *gin.Context) {
	var summary ShellSummary
	_, err := h.loop.Do(c.Request.Context(), func(s *session.Session) error {
		summary = ShellSummary{
			Persona:       s.Persona(),
			Workspace:     s.Workspace(),
			Revealed:      s.Revealed(),
			DockVisible:   s.DockVisible(),
			Windows:       len(s.Windows()),
			ActiveStreams: s.ActiveStreams(),
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	report := MetricsReport{Timestamp: time.Now(), Shell: summary}
	if h.metrics != nil {
		snap := h.metrics.Snapshot()
		report.Metrics = &snap
	}
	c.JSON(http.StatusOK, report)
}
