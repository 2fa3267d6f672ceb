/*
Package monitoring provides Prometheus metrics for the PeakOS backend.

# Overview

Metrics are registered on a per-instance registry so that several shells (and
tests) can coexist in one process. Besides HTTP request metrics the Metrics
type records shell activity and satisfies session.Recorder.

# Usage

	metrics := monitoring.NewMetrics()

	// Record shell activity
	sess := session.New(session.Options{Metrics: metrics})

	// Add middleware to Gin router
	router.Use(monitoring.RequestID(), monitoring.Middleware(metrics))

	// Expose the registry
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
