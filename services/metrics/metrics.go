package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "masomo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "masomo_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// ListQueriesRejected counts list requests refused because of their query parameters.
	ListQueriesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "masomo_list_queries_rejected_total",
			Help: "Total number of list requests rejected for invalid filter or sort parameters",
		},
		[]string{"entity", "param"},
	)
	// ExportedRows counts the rows written to spreadsheet exports.
	ExportedRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "masomo_exported_rows_total",
			Help: "Total number of rows written to exports",
		},
	)
)

// ObserveRequest records one served HTTP request. route is the route pattern, not the path.
func ObserveRequest(method, route string, status int, took time.Duration) {
	RequestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
