package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for yt-audio.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Session metrics
	SessionsStarted prometheus.Counter
	ActiveSessions  prometheus.Gauge
	SessionDuration prometheus.Histogram

	// Pipeline metrics
	FramesWritten  prometheus.Counter
	ResolveLatency *prometheus.HistogramVec
	Errors         *prometheus.CounterVec

	// HTTP API metrics
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them with reg.
// A nil reg creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ytaudio_sessions_started_total",
			Help: "Total number of playback sessions started",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ytaudio_active_sessions",
			Help: "Current number of playback sessions writing audio",
		}),
		SessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ytaudio_session_duration_seconds",
			Help:    "Wall clock duration of playback sessions",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1 hour
		}),
		FramesWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "ytaudio_frames_written_total",
			Help: "Total number of PCM frames written to output sinks",
		}),
		ResolveLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ytaudio_resolve_duration_seconds",
			Help:    "Time spent resolving a locator into a stream URL",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}, []string{"extractor"}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ytaudio_errors_total",
			Help: "Total number of playback errors by kind",
		}, []string{"kind"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ytaudio_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
	}
}

// RecordSessionStarted increments the started counter and the active gauge.
func (m *Metrics) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
	m.ActiveSessions.Inc()
}

// RecordSessionEnded decrements the active gauge and records the duration.
func (m *Metrics) RecordSessionEnded(d time.Duration) {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
	m.SessionDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordFrames(n int) {
	if m == nil {
		return
	}
	m.FramesWritten.Add(float64(n))
}

func (m *Metrics) RecordResolve(extractor string, d time.Duration) {
	if m == nil {
		return
	}
	if extractor == "" {
		extractor = "none"
	}
	m.ResolveLatency.WithLabelValues(extractor).Observe(d.Seconds())
}

// RecordError counts an error of the given kind ("resolution", "seek", "device").
func (m *Metrics) RecordError(kind string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, endpoint, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, endpoint, status).Inc()
}
