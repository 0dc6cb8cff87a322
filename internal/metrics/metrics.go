// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshrink_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidshrink_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidshrink_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Compression metrics
var (
	// CompressionsTotal is labelled by outcome: success, simulated,
	// validation_error, encoder_unavailable, encode_failure, io_error.
	CompressionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshrink_compressions_total",
			Help: "Total number of compression requests by outcome",
		},
		[]string{"outcome"},
	)

	CompressionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidshrink_compression_duration_seconds",
			Help:    "Wall time of encoder runs in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	InputBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidshrink_input_bytes_total",
			Help: "Bytes of uploaded video accepted for compression",
		},
	)

	OutputBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidshrink_output_bytes_total",
			Help: "Bytes of compressed video produced",
		},
	)

	CompressionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidshrink_compressions_in_flight",
			Help: "Compression requests currently holding the encoder",
		},
	)

	CleanupFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidshrink_cleanup_failures_total",
			Help: "Temporary workdirs that could not be removed",
		},
	)
)

// Outcome labels for CompressionsTotal.
const (
	OutcomeSuccess            = "success"
	OutcomeSimulated          = "simulated"
	OutcomeValidationError    = "validation_error"
	OutcomeEncoderUnavailable = "encoder_unavailable"
	OutcomeEncodeFailure      = "encode_failure"
	OutcomeIOError            = "io_error"
)
