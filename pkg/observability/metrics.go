package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "ideagrave"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Registration metrics, labelled by workflow stage (request, confirm,
	// complete) and outcome (ok or the error kind)
	RegistrationEvents *prometheus.CounterVec

	// Login metrics
	LoginAttempts *prometheus.CounterVec

	// Mail metrics
	MailDeliveries *prometheus.CounterVec

	// Background sweep metrics
	VerificationsSwept prometheus.Counter
	SessionsPurged     prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RegistrationEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "registration_events_total",
				Help:      "Registration workflow steps by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "login_attempts_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		MailDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "mail_deliveries_total",
				Help:      "Outbound mail deliveries by transport and status",
			},
			[]string{"transport", "status"},
		),
		VerificationsSwept: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "verifications_swept_total",
				Help:      "Expired verification entries removed by the periodic sweep",
			},
		),
		SessionsPurged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "sessions_purged_total",
				Help:      "Expired sessions removed by the periodic sweep",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RegistrationEvents,
		m.LoginAttempts,
		m.MailDeliveries,
		m.VerificationsSwept,
		m.SessionsPurged,
	)

	return m
}

// RegisterDBStats exports database/sql pool statistics for db.
func (m *Metrics) RegisterDBStats(db *sql.DB, name string) {
	m.registry.MustRegister(collectors.NewDBStatsCollector(db, name))
}

// ObserveRegistration records a registration workflow step.
func (m *Metrics) ObserveRegistration(stage, outcome string) {
	if m == nil {
		return
	}
	m.RegistrationEvents.WithLabelValues(stage, outcome).Inc()
}

// ObserveLogin records a login attempt.
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// ObserveMail records a mail delivery attempt.
func (m *Metrics) ObserveMail(transport string, err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.MailDeliveries.WithLabelValues(transport, status).Inc()
}

// ObserveSweep records the rows removed by one sweep run.
func (m *Metrics) ObserveSweep(verifications, sessions int64) {
	if m == nil {
		return
	}
	m.VerificationsSwept.Add(float64(verifications))
	m.SessionsPurged.Add(float64(sessions))
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// Installed with router.Use so the matched route template is used as the
// path label instead of the raw URL.
func HTTPMetricsMiddleware(metrics *Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					path = tmpl
				}
			}

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
