package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/compositor"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/registry"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/session"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

var (
	ErrBadWorkspace = errors.New("workspace index out of range")
	ErrBadSnapKey   = errors.New("unknown snap key")
	ErrBadPointer   = errors.New("unknown pointer event")
)

// Handlers serves the shell API.
type Handlers struct {
	loop    *session.Loop
	metrics *monitoring.Metrics
	log     *logging.Logger
}

// NewHandlers creates handlers over loop. metrics may be nil.
func NewHandlers(loop *session.Loop, metrics *monitoring.Metrics, log *logging.Logger) *Handlers {
	if log == nil {
		log = logging.NewNop()
	}
	return &Handlers{loop: loop, metrics: metrics, log: log.Named("api")}
}

// Root returns service information.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "peak-shell",
		"version": Version,
	})
}

// Health reports whether the session loop is running.
func (h *Handlers) Health(c *gin.Context) {
	select {
	case <-h.loop.Done():
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "stopped"})
	default:
		frame := h.loop.Frame()
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"seq":     frame.Seq,
			"windows": len(frame.Windows()),
		})
	}
}

// Frame returns the latest published frame without touching the loop.
func (h *Handlers) Frame(c *gin.Context) {
	c.JSON(http.StatusOK, h.loop.Frame())
}

// Windows lists every open window, including hidden ones.
func (h *Handlers) Windows(c *gin.Context) {
	var windows []types.WindowState
	_, err := h.loop.Do(c.Request.Context(), func(s *session.Session) error {
		windows = s.Windows()
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

// call applies msg and answers with the resulting frame.
func (h *Handlers) call(c *gin.Context, msg host.Msg) {
	h.respond(c)(h.loop.Call(c.Request.Context(), msg))
}

func (h *Handlers) respond(c *gin.Context) func(compositor.Frame, error) {
	return func(frame compositor.Frame, err error) {
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, frame)
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Warn("Request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, registry.ErrUnknownApp):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}
