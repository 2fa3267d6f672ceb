package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the shell's Prometheus instrumentation plus a small running
// snapshot for the JSON report.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Shell
	WindowsOpen       prometheus.Gauge
	StreamsActive     prometheus.Gauge
	FramesTotal       prometheus.Counter
	FrameCompose      prometheus.Histogram
	MessagesTotal     *prometheus.CounterVec
	PlaceholderLayers prometheus.Counter

	// Stream clients
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	Uptime    prometheus.GaugeFunc
	startTime time.Time

	mu       sync.RWMutex
	snapshot MetricsSnapshot
}

// MetricsSnapshot is the JSON view of the running counters.
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	Frames            int64   `json:"frames"`
	Messages          int64   `json:"messages"`
	WindowsOpen       int64   `json:"windows_open"`
	StreamsActive     int64   `json:"streams_active"`
	ActiveConnections int64   `json:"active_connections"`
	AvgRequestSeconds float64 `json:"avg_request_seconds"`
	UptimeSeconds     float64 `json:"uptime_seconds"`

	totalDuration float64
}

const namespace = "peak"

// NewMetrics creates a metrics collector with its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests handled, by route and status.",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP handler latency.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "HTTP response body size.",
				Buckets:   prometheus.ExponentialBuckets(128, 8, 6),
			},
			[]string{"method", "path"},
		),

		WindowsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "peak_windows_open",
				Help: "Number of open windows",
			},
		),
		StreamsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "peak_streams_active",
				Help: "Number of running app background streams",
			},
		),
		FramesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "peak_frames_total",
				Help: "Total number of composed frames",
			},
		),
		FrameCompose: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "peak_frame_compose_seconds",
				Help:    "Frame composition time in seconds",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
		),
		MessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peak_messages_total",
				Help: "Total number of shell messages handled",
			},
			[]string{"kind"},
		),
		PlaceholderLayers: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "peak_placeholder_layers_total",
				Help: "Window layers composed for unregistered apps",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "ws",
				Name:      "connections",
				Help:      "Connected /stream clients.",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ws",
				Name:      "messages_total",
				Help:      "Stream messages by direction (in or out) and type.",
			},
			[]string{"dir", "type"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "peak_uptime_seconds",
			Help: "Time since the backend started",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest observes one completed request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	failed := status >= "400"
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if failed {
		m.snapshot.TotalErrors++
	}
}

// MessageHandled counts a shell message by kind.
func (m *Metrics) MessageHandled(kind string) {
	m.MessagesTotal.WithLabelValues(kind).Inc()
	m.mu.Lock()
	m.snapshot.Messages++
	m.mu.Unlock()
}

// FrameComposed records one composed frame.
func (m *Metrics) FrameComposed(d time.Duration, placeholders int) {
	m.FramesTotal.Inc()
	m.FrameCompose.Observe(d.Seconds())
	if placeholders > 0 {
		m.PlaceholderLayers.Add(float64(placeholders))
	}
	m.mu.Lock()
	m.snapshot.Frames++
	m.mu.Unlock()
}

// SetWindowsOpen sets the open window gauge.
func (m *Metrics) SetWindowsOpen(n int) {
	m.WindowsOpen.Set(float64(n))
	m.mu.Lock()
	m.snapshot.WindowsOpen = int64(n)
	m.mu.Unlock()
}

// SetStreamsActive sets the running stream gauge.
func (m *Metrics) SetStreamsActive(n int) {
	m.StreamsActive.Set(float64(n))
	m.mu.Lock()
	m.snapshot.StreamsActive = int64(n)
	m.mu.Unlock()
}

// RecordWSMessage counts a stream message.
func (m *Metrics) RecordWSMessage(dir, kind string) {
	m.WSMessages.WithLabelValues(dir, kind).Inc()
}

// IncWSConnections and DecWSConnections track connected stream clients.
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON API.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	if snap.TotalRequests > 0 {
		snap.AvgRequestSeconds = snap.totalDuration / float64(snap.TotalRequests)
	}
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
