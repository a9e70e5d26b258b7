// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tracker_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"method", "route"})

	// outcome: success or an error kind (duplicate, invalid_input, ...)
	TrackOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_track_requests_total",
		Help: "Product tracking requests by outcome",
	}, []string{"outcome"})

	UpstreamFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tracker_upstream_fetch_duration_seconds",
		Help:    "Time spent fetching product json from storefronts",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"outcome"})

	ThemesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_themes_generated_total",
		Help: "Generated themes by style",
	}, []string{"style"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
