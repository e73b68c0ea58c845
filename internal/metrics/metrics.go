// server/internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeeos_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coffeeos_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coffeeos_websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)

	ChangeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeeos_change_events_total",
			Help: "Total number of change events broadcast to websocket clients",
		},
		[]string{"event"},
	)

	ImageUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeeos_image_uploads_total",
			Help: "Total number of coffee shop image uploads",
		},
		[]string{"result"},
	)
)
