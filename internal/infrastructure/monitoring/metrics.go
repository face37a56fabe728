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

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Render metrics
	RendersTotal     *prometheus.CounterVec
	RenderDuration   *prometheus.HistogramVec
	Removals         *prometheus.CounterVec
	Decodes          *prometheus.CounterVec
	DocumentBytes    prometheus.Histogram
	ViewsActive      prometheus.Gauge
	OverlayActions   *prometheus.CounterVec
	FetchBreakerOpen *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	TotalRequests int64   `json:"totalRequests"`
	TotalErrors   int64   `json:"totalErrors"`
	Renders       int64   `json:"renders"`
	RenderErrors  int64   `json:"renderErrors"`
	ActiveViews   int64   `json:"activeViews"`
	ActiveSockets int64   `json:"activeSockets"`
	AvgRenderMs   float64 `json:"avgRenderMs"`
	UptimeSeconds float64 `json:"uptimeSeconds"`

	renderSeconds float64
}

// NewMetrics creates a collector backed by its own registry, with Go and
// process collectors attached.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htmlreader_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "htmlreader_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "htmlreader_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Render metrics
		RendersTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htmlreader_renders_total",
				Help: "Total number of document renders",
			},
			[]string{"mode", "status"},
		),
		RenderDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "htmlreader_render_duration_seconds",
				Help:    "Full pipeline duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"mode"},
		),
		Removals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htmlreader_sanitize_changes_total",
				Help: "Nodes and attributes removed or rewritten by the sanitizer",
			},
			[]string{"mode", "kind"},
		),
		Decodes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htmlreader_decodes_total",
				Help: "Documents decoded, by detected container",
			},
			[]string{"kind"},
		),
		DocumentBytes: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "htmlreader_document_size_bytes",
				Help:    "Raw size of rendered documents",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 9),
			},
		),
		ViewsActive: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "htmlreader_views_active",
				Help: "Number of open views",
			},
		),
		OverlayActions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htmlreader_overlay_actions_total",
				Help: "Search, zoom and hotkey actions handled",
			},
			[]string{"action"},
		),
		FetchBreakerOpen: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htmlreader_fetch_breaker_open_total",
				Help: "Times a remote host circuit opened",
			},
			[]string{"host"},
		),

		// WebSocket metrics
		WSConnections: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "htmlreader_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htmlreader_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}
	m.Uptime = f.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "htmlreader_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordRender records one pipeline run.
func (m *Metrics) RecordRender(mode string, ok bool, duration time.Duration, size int) {
	status := "success"
	if !ok {
		status = "error"
	}
	m.RendersTotal.WithLabelValues(mode, status).Inc()
	m.RenderDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if size > 0 {
		m.DocumentBytes.Observe(float64(size))
	}

	m.mu.Lock()
	m.snapshot.Renders++
	m.snapshot.renderSeconds += duration.Seconds()
	if !ok {
		m.snapshot.RenderErrors++
	}
	m.mu.Unlock()
}

// RecordSanitize records sanitizer changes keyed by kind.
func (m *Metrics) RecordSanitize(mode string, kinds map[string]int) {
	for kind, n := range kinds {
		m.Removals.WithLabelValues(mode, kind).Add(float64(n))
	}
}

// RecordDecode records the container a document was decoded from.
func (m *Metrics) RecordDecode(kind string) {
	m.Decodes.WithLabelValues(kind).Inc()
}

// RecordOverlayAction records a handled overlay action.
func (m *Metrics) RecordOverlayAction(action string) {
	m.OverlayActions.WithLabelValues(action).Inc()
}

// RecordBreakerOpen records a remote host circuit opening.
func (m *Metrics) RecordBreakerOpen(host string) {
	m.FetchBreakerOpen.WithLabelValues(host).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// SetViewsActive sets the number of open views
func (m *Metrics) SetViewsActive(count int) {
	m.ViewsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveViews = int64(count)
	m.mu.Unlock()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveSockets++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveSockets--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON API.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	s := m.snapshot
	m.mu.RUnlock()
	if s.Renders > 0 {
		s.AvgRenderMs = s.renderSeconds / float64(s.Renders) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
