package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	automationEmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automation_emails_sent_total",
			Help: "Total number of automation emails sent",
		},
		[]string{"trigger"},
	)

	automationSweepPairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automation_sweep_pairs_total",
			Help: "Matched (automation, lead) pairs by outcome",
		},
		[]string{"result"},
	)

	automationSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "automation_sweep_duration_seconds",
			Help:    "Duration of a full automation sweep in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300},
		},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern usa o padrão do chi (/api/leads/{id}) para não explodir a cardinalidade.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

// PrometheusRecorder exporta os contadores das automações.
type PrometheusRecorder struct{}

func (PrometheusRecorder) RecordEmailSent(trigger string) {
	automationEmailsSent.WithLabelValues(trigger).Inc()
}

func (PrometheusRecorder) RecordPair(result string) {
	automationSweepPairs.WithLabelValues(result).Inc()
}

func (PrometheusRecorder) ObserveSweep(d time.Duration) {
	automationSweepDuration.Observe(d.Seconds())
}
