package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	auditEntriesTotal    *prometheus.CounterVec
	auditWriteFailures   prometheus.Counter
	remindersSentTotal   prometheus.Counter
	reminderPassDuration prometheus.Histogram
	proofUploadsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kasku_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kasku_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kasku_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		auditEntriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kasku_audit_entries_total",
			Help: "Audit entries written, labelled by action and outcome.",
		}, []string{"action", "outcome"})

		auditWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kasku_audit_write_failures_total",
			Help: "Audit entry writes that failed and were dropped.",
		})

		remindersSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kasku_reminders_sent_total",
			Help: "WhatsApp dues reminders dispatched.",
		})

		reminderPassDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kasku_reminder_pass_seconds",
			Help:    "Duration of one reminder scheduler pass.",
			Buckets: []float64{0.1, 0.5, 1.0, 5.0, 15.0, 60.0},
		})

		proofUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kasku_proof_uploads_total",
			Help: "Payment proof uploads, labelled by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			auditEntriesTotal,
			auditWriteFailures,
			remindersSentTotal,
			reminderPassDuration,
			proofUploadsTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AuditEntries exposes the audit entry counter.
func AuditEntries() *prometheus.CounterVec {
	RegisterMetrics()
	return auditEntriesTotal
}

// AuditWriteFailures exposes the dropped-audit-write counter.
func AuditWriteFailures() prometheus.Counter {
	RegisterMetrics()
	return auditWriteFailures
}

// RemindersSent exposes the dispatched reminder counter.
func RemindersSent() prometheus.Counter {
	RegisterMetrics()
	return remindersSentTotal
}

// ReminderPassDuration exposes the scheduler pass histogram.
func ReminderPassDuration() prometheus.Histogram {
	RegisterMetrics()
	return reminderPassDuration
}

// ProofUploads exposes the payment proof upload counter.
func ProofUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return proofUploadsTotal
}

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
