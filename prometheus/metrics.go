package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "church_login_total",
			Help: "Total number of login attempts",
		},
	)

	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "church_register_total",
			Help: "Total number of church onboardings",
		},
	)

	// operation is "create", "update", "delete", "convert", ...
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_resource_operations_total",
			Help: "Total number of resource mutations by resource and operation",
		},
		[]string{"resource", "operation"},
	)

	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// type is "login_failure", "invalid_token", "forbidden", ...
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_auth_errors_total",
			Help: "Total number of authentication and authorization errors",
		},
		[]string{"type"},
	)

	AuthOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_auth_operations_total",
			Help: "Total number of authentication operations",
		},
		[]string{"operation"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "church_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "church_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Gauge metrics
var (
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "church_active_tokens",
			Help: "Number of refresh tokens issued and not revoked since start",
		},
	)

	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "church_info",
			Help: "Information about the church service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(TenantOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(AuthOperationCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(InfoGauge)
}

// SetVersion publishes the running build version.
func SetVersion(version string) {
	InfoGauge.With(prometheus.Labels{"version": version}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures a database operation:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(start).Seconds())
	}
}

// MetricsMiddleware captures duration and count for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			labels := prometheus.Labels{
				"endpoint": c.Path(),
				"method":   c.Request().Method,
				"status":   status,
			}

			RequestDuration.With(labels).Observe(duration)
			HTTPRequestCounter.With(labels).Inc()

			return err
		}
	}
}

func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}

func DecreaseActiveTokens() {
	ActiveTokensGauge.Dec()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordOperation records a mutation of a resource
func RecordOperation(resource, operation string) {
	TenantOperationCounter.With(prometheus.Labels{"resource": resource, "operation": operation}).Inc()
}

// RecordAuthOperation records an authentication operation by type
func RecordAuthOperation(operation string) {
	AuthOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}
