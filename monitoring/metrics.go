// ABOUTME: Prometheus collectors for remote sync, reconciliation and the HTTP boundary
// ABOUTME: Init registers them once on the default registry; Handler serves /metrics
package monitoring

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotedesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotedesk_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
)

var (
	RemoteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotedesk_remote_requests_total",
			Help: "Remote spreadsheet calls by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	RemoteLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotedesk_remote_request_duration_seconds",
			Help:    "Latency of remote spreadsheet calls",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"action"},
	)

	MergeRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotedesk_merge_records_total",
			Help: "Incoming records by reconciliation outcome",
		},
		[]string{"source", "outcome"},
	)
)

var initOnce sync.Once

// Init registers every collector with the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal, RequestDuration)
		prometheus.MustRegister(RemoteRequests, RemoteLatency, MergeRecords)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
