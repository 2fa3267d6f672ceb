package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxLogBatch caps the entries accepted per request.
const MaxLogBatch = 500

// ClientLogEntry is a log line reported by a front-end.
type ClientLogEntry struct {
	ID        string                 `json:"id"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context"`
	Timestamp string                 `json:"timestamp"`
}

// ClientLogRequest is a batch of front-end logs.
type ClientLogRequest struct {
	Source  string           `json:"source" binding:"required"`
	Entries []ClientLogEntry `json:"entries"`
}

// StreamLogs writes front-end log batches into the backend log.
func (h *Handlers) StreamLogs(c *gin.Context) {
	var req ClientLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log request format"})
		return
	}
	switch {
	case len(req.Entries) == 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": "No log entries provided"})
		return
	case len(req.Entries) > MaxLogBatch:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("At most %d entries per batch", MaxLogBatch)})
		return
	}

	logger := h.log.Named("client")
	for _, entry := range req.Entries {
		logClientEntry(logger.Logger, req.Source, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"entries_received": len(req.Entries),
		"timestamp":        time.Now().Unix(),
	})
}

func logClientEntry(logger *zap.Logger, source string, entry ClientLogEntry) {
	fields := make([]zap.Field, 0, len(entry.Context)+3)
	fields = append(fields,
		zap.String("source", source),
		zap.String("client_log_id", entry.ID),
		zap.String("client_timestamp", entry.Timestamp),
	)
	for key, value := range entry.Context {
		switch v := value.(type) {
		case string:
			fields = append(fields, zap.String(key, v))
		case float64:
			fields = append(fields, zap.Float64(key, v))
		case bool:
			fields = append(fields, zap.Bool(key, v))
		default:
			fields = append(fields, zap.Any(key, v))
		}
	}

	switch entry.Level {
	case "error":
		logger.Error(entry.Message, fields...)
	case "warn":
		logger.Warn(entry.Message, fields...)
	case "debug", "verbose":
		logger.Debug(entry.Message, fields...)
	default:
		logger.Info(entry.Message, fields...)
	}
}

// LogLevelRequest changes the backend log level at runtime.
type LogLevelRequest struct {
	Level string `json:"level" binding:"required"`
}

// LogLevel reports the current backend log level.
func (h *Handlers) LogLevel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"level": h.log.Level().String()})
}

// SetLogLevel changes the backend log level for every component.
func (h *Handlers) SetLogLevel(c *gin.Context) {
	var req LogLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log level request"})
		return
	}
	if err := h.log.SetLevel(strings.ToLower(req.Level)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown log level %q", req.Level)})
		return
	}
	h.log.Info("Log level changed", zap.String("level", h.log.Level().String()))
	c.JSON(http.StatusOK, gin.H{"level": h.log.Level().String()})
}
