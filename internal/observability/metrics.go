// Package observability holds the Prometheus collectors and the helpers
// that record into them.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hotelmatch"

var (
	// HTTPRequests counts served requests by route, method and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	// HTTPLatency observes request durations by route and method.
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	// WarehouseQueries counts warehouse queries by name and outcome.
	WarehouseQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "warehouse_queries_total", Help: "Warehouse queries by outcome."},
		[]string{"query", "outcome"}, // outcome: ok|error
	)
	// WarehouseLatency observes warehouse query durations.
	WarehouseLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "warehouse_query_duration_seconds",
			Help:    "Warehouse query duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)
	// RejectedRows counts rows dropped at load, by offending column.
	RejectedRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rejected_rows_total", Help: "Warehouse rows dropped while decoding."},
		[]string{"column"},
	)
	// CacheEvents counts cache hits, misses, sets and deletes per backend.
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	// ReviewActions counts reviewer actions by outcome.
	ReviewActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "review_actions_total", Help: "Reviewer actions by outcome."},
		[]string{"action", "outcome"},
	)
	// MatchGroups is the number of match groups in the loaded day.
	MatchGroups = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "match_groups", Help: "Match groups in the loaded day."},
	)
)

// InitRegistry returns a fresh registry holding the application collectors.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, WarehouseQueries, WarehouseLatency,
		RejectedRows, CacheEvents, ReviewActions, MatchGroups)
	return reg
}

// MetricsHandler serves reg in the Prometheus text format.
func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveQuery records one warehouse query and its outcome.
func ObserveQuery(query string, err error, dur time.Duration) {
	WarehouseQueries.WithLabelValues(query, outcome(err)).Inc()
	WarehouseLatency.WithLabelValues(query).Observe(dur.Seconds())
}

// ObserveRejectedRow records a row rejected on column.
func ObserveRejectedRow(column string) {
	RejectedRows.WithLabelValues(column).Inc()
}

// ObserveCache records a cache event: hit, miss, set or del.
func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

// ObserveAction records one reviewer action and its outcome.
func ObserveAction(action string, err error) {
	ReviewActions.WithLabelValues(action, outcome(err)).Inc()
}

// SetMatchGroups publishes the group count of a newly loaded day.
func SetMatchGroups(n int) {
	MatchGroups.Set(float64(n))
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}
