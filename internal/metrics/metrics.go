package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Chat metrics
	ChatRequestsTotal      *prometheus.CounterVec
	ChatDurationSeconds    *prometheus.HistogramVec
	UploadRequestsTotal    *prometheus.CounterVec

	// Tool dispatch metrics
	ToolDispatchTotal   *prometheus.CounterVec
	ToolDurationSeconds *prometheus.HistogramVec

	// LLM metrics
	LLMCallsTotal      *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec

	// Extraction metrics
	ExtractionTotal           *prometheus.CounterVec
	ExtractionDurationSeconds *prometheus.HistogramVec

	// Document store metrics
	StoredDocuments prometheus.Gauge

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ChatRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbuddy_chat_requests_total",
				Help: "Total number of chat requests by terminal state",
			},
			[]string{"state"}, // state: responded, rate_limited, error
		),

		ChatDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campusbuddy_chat_duration_seconds",
				Help:    "Chat request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"state"},
		),

		UploadRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbuddy_upload_requests_total",
				Help: "Total number of upload requests by outcome",
			},
			[]string{"status"}, // status: stored, rejected, error
		),

		ToolDispatchTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbuddy_tool_dispatch_total",
				Help: "Total number of tool invocations by tool and status",
			},
			[]string{"tool", "status"}, // status: success, not_found, error
		),

		ToolDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campusbuddy_tool_duration_seconds",
				Help:    "Tool invocation duration in seconds by tool",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"tool"},
		),

		LLMCallsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbuddy_llm_calls_total",
				Help: "Total number of model calls by provider and status",
			},
			[]string{"provider", "status"}, // status: success, quota, error
		),

		LLMDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campusbuddy_llm_duration_seconds",
				Help:    "Model call duration in seconds by provider",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),

		ExtractionTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbuddy_extraction_total",
				Help: "Total number of document extractions by file type and status",
			},
			[]string{"file_type", "status"},
		),

		ExtractionDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campusbuddy_extraction_duration_seconds",
				Help:    "Document extraction duration in seconds by file type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"file_type"},
		),

		StoredDocuments: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "campusbuddy_stored_documents",
				Help: "Number of documents currently held in the in-memory store",
			},
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbuddy_ratelimit_dropped_total",
				Help: "Total number of requests dropped by the rate limiter",
			},
			[]string{"limiter"},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbuddy_http_errors_total",
				Help: "Total number of HTTP error responses by path and status code",
			},
			[]string{"path", "status"},
		),
	}

	return m
}

// RecordChat records one chat request with its terminal state and duration.
func (m *Metrics) RecordChat(state string, d time.Duration) {
	m.ChatRequestsTotal.WithLabelValues(state).Inc()
	m.ChatDurationSeconds.WithLabelValues(state).Observe(d.Seconds())
}

// RecordUpload records one upload request outcome.
func (m *Metrics) RecordUpload(status string) {
	m.UploadRequestsTotal.WithLabelValues(status).Inc()
}

// RecordToolDispatch records one tool invocation.
func (m *Metrics) RecordToolDispatch(tool, status string, d time.Duration) {
	m.ToolDispatchTotal.WithLabelValues(tool, status).Inc()
	m.ToolDurationSeconds.WithLabelValues(tool).Observe(d.Seconds())
}

// RecordLLMCall records one model call.
func (m *Metrics) RecordLLMCall(provider, status string, d time.Duration) {
	m.LLMCallsTotal.WithLabelValues(provider, status).Inc()
	m.LLMDurationSeconds.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordExtraction records one document extraction.
func (m *Metrics) RecordExtraction(fileType, status string, d time.Duration) {
	m.ExtractionTotal.WithLabelValues(fileType, status).Inc()
	m.ExtractionDurationSeconds.WithLabelValues(fileType).Observe(d.Seconds())
}

// SetStoredDocuments updates the stored document gauge.
func (m *Metrics) SetStoredDocuments(n int) {
	m.StoredDocuments.Set(float64(n))
}

// RecordRateLimiterDrop records a dropped request for the named limiter.
func (m *Metrics) RecordRateLimiterDrop(limiter string) {
	m.RateLimiterDropped.WithLabelValues(limiter).Inc()
}

// RecordHTTPError records an HTTP error response.
func (m *Metrics) RecordHTTPError(path, status string) {
	m.HTTPErrorsTotal.WithLabelValues(path, status).Inc()
}
