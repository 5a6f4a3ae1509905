// Package metrics declares the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omniconv_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "omniconv_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "omniconv_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Conversion metrics
var (
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omniconv_conversions_total",
			Help: "Total number of file conversions by domain and outcome",
		},
		[]string{"domain", "status"}, // domain: media, document, image; status: success, failure
	)

	ConversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "omniconv_conversion_duration_seconds",
			Help:    "Per-file conversion duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"domain"},
	)

	ActiveExternalCommands = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "omniconv_external_commands_active",
			Help: "Number of external tool invocations currently running",
		},
	)

	FilesCleanedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "omniconv_files_cleaned_total",
			Help: "Total number of files and directories removed by cleanup",
		},
	)
)

// Application info metric
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "omniconv_app_info",
		Help: "Application information",
	},
	[]string{"version", "go_version"},
)

// SetAppInfo sets the application info metric.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// RecordConversion records one finished conversion.
func RecordConversion(domain string, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	ConversionsTotal.WithLabelValues(domain, status).Inc()
	ConversionDuration.WithLabelValues(domain).Observe(seconds)
}
