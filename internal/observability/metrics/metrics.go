// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "oral_health_intake"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics
	SessionsTotal  prometheus.Counter
	SessionsActive prometheus.Gauge
	SessionEvents  *prometheus.CounterVec

	// Audio metrics
	AudioBytesReceived prometheus.Counter
	AudioUploadsTotal  *prometheus.CounterVec

	// Transcription metrics
	TranscriptionsTotal  *prometheus.CounterVec
	TranscriptionLatency *prometheus.HistogramVec

	// Extraction metrics
	AnswersExtracted  prometheus.Counter
	ExtractionErrors  *prometheus.CounterVec
	ExtractionLatency *prometheus.HistogramVec

	// Record store metrics
	StoreOperations *prometheus.CounterVec
	StoreLatency    *prometheus.HistogramVec

	// Export metrics
	ExportsTotal *prometheus.CounterVec
	ExportRows   prometheus.Histogram

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of intake sessions created",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of intake sessions not yet closed",
		}),
		SessionEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session events handled, by event and outcome",
		}, []string{"event", "outcome"}),

		AudioBytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total audio bytes accepted for transcription",
		}),
		AudioUploadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_uploads_total",
			Help:      "Audio uploads, by outcome",
		}, []string{"outcome"}),

		TranscriptionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Transcription attempts, by provider and outcome",
		}, []string{"provider", "outcome"}),
		TranscriptionLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_latency_seconds",
			Help:      "Speech-to-text latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"provider"}),

		AnswersExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_extracted_total",
			Help:      "Total number of answers extracted from transcripts",
		}),
		ExtractionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_errors_total",
			Help:      "Question-answering errors, by provider",
		}, []string{"provider"}),
		ExtractionLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_latency_seconds",
			Help:      "Latency of a full question list extraction in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider"}),

		StoreOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Record store operations, by operation and outcome",
		}, []string{"operation", "outcome"}),
		StoreLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_latency_seconds",
			Help:      "Record store latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"operation"}),

		ExportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "CSV exports, by outcome",
		}, []string{"outcome"}),
		ExportRows: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_rows",
			Help:      "Number of records written per CSV export",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route and status code",
		}, []string{"method", "route", "code"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordSessionStart records a new session being opened.
func (m *Metrics) RecordSessionStart() {
	m.SessionsTotal.Inc()
	m.SessionsActive.Inc()
}

// RecordSessionEnd records a session being closed.
func (m *Metrics) RecordSessionEnd() {
	m.SessionsActive.Dec()
}

// RecordSessionEvent records a handled session event.
func (m *Metrics) RecordSessionEvent(event string, err error) {
	m.SessionEvents.WithLabelValues(event, outcome(err)).Inc()
}

// RecordAudioUpload records an audio upload and, when accepted, its size.
func (m *Metrics) RecordAudioUpload(bytes int64, err error) {
	m.AudioUploadsTotal.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.AudioBytesReceived.Add(float64(bytes))
	}
}

// RecordTranscription records a transcription attempt. Outcome is a failure kind or "success".
func (m *Metrics) RecordTranscription(provider, outcome string, latencySeconds float64) {
	m.TranscriptionsTotal.WithLabelValues(provider, outcome).Inc()
	m.TranscriptionLatency.WithLabelValues(provider).Observe(latencySeconds)
}

// RecordExtraction records a question list extraction.
func (m *Metrics) RecordExtraction(provider string, answers int, err error, latencySeconds float64) {
	m.ExtractionLatency.WithLabelValues(provider).Observe(latencySeconds)
	m.AnswersExtracted.Add(float64(answers))
	if err != nil {
		m.ExtractionErrors.WithLabelValues(provider).Inc()
	}
}

// RecordStoreOperation records a record store call.
func (m *Metrics) RecordStoreOperation(op string, err error, latencySeconds float64) {
	m.StoreOperations.WithLabelValues(op, outcome(err)).Inc()
	m.StoreLatency.WithLabelValues(op).Observe(latencySeconds)
}

// RecordExport records a CSV export. Empty exports are counted separately.
func (m *Metrics) RecordExport(rows int, err error) {
	switch {
	case err != nil:
		m.ExportsTotal.WithLabelValues("error").Inc()
	case rows == 0:
		m.ExportsTotal.WithLabelValues("empty").Inc()
	default:
		m.ExportsTotal.WithLabelValues("success").Inc()
		m.ExportRows.Observe(float64(rows))
	}
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, code int, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, httpCode(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

func httpCode(code int) string {
	if code == 0 {
		code = 200
	}
	return strconv.Itoa(code)
}
