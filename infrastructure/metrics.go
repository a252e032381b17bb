package infrastructure

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hiring-platform/domain"
)

const metricsNamespace = "hiring"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	gatewayLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "scoring_gateway_duration_seconds",
		Help:      "Duration of calls to the external scoring services",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"service", "outcome"})

	applicationsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "applications_submitted_total",
		Help:      "Applications that were submitted and screened",
	})

	interviewDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "interview_decisions_total",
		Help:      "Completed interviews by final status",
	}, []string{"status"})

	dashboardsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "dashboards_generated_total",
		Help:      "Dashboard rows generated by period",
	}, []string{"period"})
)

// GinMetrics records request counts and latency per route.
func GinMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		httpLatency.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func observeGatewayCall(service string, err error, elapsed time.Duration) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrValidation):
		outcome = "invalid_request"
	default:
		outcome = "error"
	}
	gatewayLatency.WithLabelValues(service, outcome).Observe(elapsed.Seconds())
}

// PrometheusRecorder counts workflow outcomes.
type PrometheusRecorder struct{}

func (PrometheusRecorder) ApplicationSubmitted() {
	applicationsSubmitted.Inc()
}

func (PrometheusRecorder) InterviewDecided(status domain.ApplicationStatus) {
	interviewDecisions.WithLabelValues(string(status)).Inc()
}

func (PrometheusRecorder) DashboardGenerated(period domain.Period) {
	dashboardsGenerated.WithLabelValues(string(period)).Inc()
}
