// Package metrics holds the Prometheus collectors for the query engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every thunderdoc collector. It is separate from the default
// registry so embedding applications decide where it is exposed.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// QueriesTotal counts engine queries by kind (query, search, paged_query,
	// paged_search) and status (ok, error).
	QueriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thunderdoc_queries_total",
			Help: "Total number of engine queries",
		},
		[]string{"kind", "status"},
	)
	// QueryDuration is the latency of engine queries.
	QueryDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thunderdoc_query_duration_seconds",
			Help:    "Engine query latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	// IndexRequests counts index materialization requests by outcome
	// (created, exists, cached).
	IndexRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thunderdoc_index_requests_total",
			Help: "Total number of index materialization requests",
		},
		[]string{"result"},
	)
)

// ObserveQuery records one finished query of the given kind.
func ObserveQuery(kind string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	QueriesTotal.WithLabelValues(kind, status).Inc()
	QueryDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// Handler returns the Prometheus HTTP handler for Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
