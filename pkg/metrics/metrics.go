package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "usertemplate"

// Metrics groups the collectors exported by the application.
type Metrics struct {
	// HTTPRequestCounter counts processed HTTP requests.
	HTTPRequestCounter *prometheus.CounterVec
	// HTTPRequestDuration observes HTTP request latency.
	HTTPRequestDuration *prometheus.HistogramVec
	// AppInfo exposes the running version.
	AppInfo *prometheus.GaugeVec

	AuthAttempts          *prometheus.CounterVec
	PasswordResetRequests *prometheus.CounterVec
	PasswordResets        *prometheus.CounterVec
}

// New registers every collector on reg. Tests pass a fresh
// prometheus.NewRegistry(); the server passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, version string) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		HTTPRequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Histogram of HTTP request latencies.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		AppInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "app_info",
				Help:      "Information about the running application.",
			},
			[]string{"version"},
		),
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Login attempts by result.",
			},
			[]string{"result"},
		),
		PasswordResetRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "password_reset_requests_total",
				Help:      "Forgot-password requests by result.",
			},
			[]string{"result"},
		),
		PasswordResets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "password_resets_total",
				Help:      "Password reset attempts by result.",
			},
			[]string{"result"},
		),
	}
	if version == "" {
		version = "unknown"
	}
	m.AppInfo.With(prometheus.Labels{"version": version}).Set(1)
	return m
}

// Nop returns metrics bound to a throwaway registry.
func Nop() *Metrics {
	return New(prometheus.NewRegistry(), "")
}
