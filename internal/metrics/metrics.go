// Package metrics holds the Prometheus collectors and the gin middleware that feeds them.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	surveySubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_submissions_total",
			Help: "Survey responses stored, by survey kind",
		},
		[]string{"kind"},
	)

	wellnessSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wellness_submissions_total",
			Help: "Wellness submissions, by outcome",
		},
		[]string{"status"},
	)

	wellnessConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wellness_version_conflicts_total",
			Help: "Optimistic write conflicts on the wellness day document",
		},
	)

	debouncedWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debounced_writes_total",
			Help: "Debounced practice writes, by outcome",
		},
		[]string{"status"},
	)

	cascadeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_child_failures_total",
			Help: "Child deletions that failed during a session delete",
		},
		[]string{"child"},
	)

	retryQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retry_queue_depth",
			Help: "Tasks waiting in the retry queue",
		},
	)

	sseSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_subscribers",
			Help: "Open practice event streams",
		},
	)
)

// Middleware records request count, latency and in-flight requests.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

func RecordSurveySubmission(kind string) {
	surveySubmissionsTotal.WithLabelValues(kind).Inc()
}

func RecordWellnessSubmission(ok bool) {
	wellnessSubmissionsTotal.WithLabelValues(outcome(ok)).Inc()
}

func RecordWellnessConflict() {
	wellnessConflictsTotal.Inc()
}

func RecordDebouncedWrite(ok bool) {
	debouncedWritesTotal.WithLabelValues(outcome(ok)).Inc()
}

func RecordCascadeFailure(child string) {
	cascadeFailuresTotal.WithLabelValues(child).Inc()
}

func SetRetryQueueDepth(n int) {
	retryQueueDepth.Set(float64(n))
}

func SSESubscribed()   { sseSubscribers.Inc() }
func SSEUnsubscribed() { sseSubscribers.Dec() }
