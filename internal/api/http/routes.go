package http

import "github.com/gin-gonic/gin"

// Register mounts the shell API on r.
func Register(r gin.IRouter, h *Handlers) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/frame", h.Frame)
	r.GET("/windows", h.Windows)

	apps := r.Group("/apps/:app")
	{
		apps.POST("/open", h.OpenApp)
		apps.POST("/focus", h.FocusApp)
		apps.POST("/toggle", h.ToggleApp)
		apps.POST("/sticky", h.ToggleSticky)
		apps.POST("/maximize", h.Maximize)
		apps.POST("/input", h.AppInput)
		apps.POST("/workspace/:index", h.MoveToWorkspace)
		apps.DELETE("", h.CloseApp)
	}

	r.POST("/snap", h.Snap)
	r.POST("/workspace/:index", h.SwitchWorkspace)
	r.POST("/persona/:persona", h.SwitchPersona)
	r.POST("/reveal", h.ToggleReveal)
	r.POST("/dock", h.ToggleDock)
	r.POST("/theme", h.ToggleTheme)
	r.POST("/viewport", h.SetViewport)
	r.POST("/pointer", h.Pointer)
	r.POST("/actions", h.Action)
	r.DELETE("/notifications/:id", h.DismissNotification)

	r.POST("/logs", h.StreamLogs)
	r.GET("/logs/level", h.LogLevel)
	r.PUT("/logs/level", h.SetLogLevel)
	r.GET("/metrics", h.Metrics)
	r.GET("/metrics/json", h.MetricsJSON)
}
