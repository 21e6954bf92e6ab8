// Package metrics exposes Prometheus instrumentation for the statistics server.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once     sync.Once
	instance *Collector
)

// Collector records server metrics.
type Collector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbSelectionsTotal *prometheus.CounterVec

	cacheHitsTotal   prometheus.Counter
	cacheMissesTotal prometheus.Counter
	cacheErrorsTotal prometheus.Counter
}

// NewCollector returns the process-wide collector, registering it on first use.
func NewCollector() *Collector {
	once.Do(func() {
		instance = &Collector{
			httpRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chessex_http_requests_total",
					Help: "Total number of statistics API requests",
				},
				[]string{"route", "status"},
			),
			httpRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "chessex_http_request_duration_seconds",
					Help:    "Duration of statistics API requests in seconds",
					Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
				},
				[]string{"route"},
			),
			dbSelectionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chessex_db_selections_total",
					Help: "Statistics database chosen per request",
				},
				[]string{"db"},
			),
			cacheHitsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "chessex_cache_hits_total",
					Help: "Total number of response cache hits",
				},
			),
			cacheMissesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "chessex_cache_misses_total",
					Help: "Total number of response cache misses",
				},
			),
			cacheErrorsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "chessex_cache_errors_total",
					Help: "Total number of response cache failures",
				},
			),
		}
	})
	return instance
}

// RecordHTTPRequest records a served request.
func (c *Collector) RecordHTTPRequest(route, status string, durationSecs float64) {
	c.httpRequestsTotal.WithLabelValues(route, status).Inc()
	c.httpRequestDuration.WithLabelValues(route).Observe(durationSecs)
}

// RecordDBSelection records which database answered a request.
func (c *Collector) RecordDBSelection(db string) {
	c.dbSelectionsTotal.WithLabelValues(db).Inc()
}

// RecordCacheHit records a cache hit.
func (c *Collector) RecordCacheHit() { c.cacheHitsTotal.Inc() }

// RecordCacheMiss records a cache miss.
func (c *Collector) RecordCacheMiss() { c.cacheMissesTotal.Inc() }

// RecordCacheError records a failed cache operation.
func (c *Collector) RecordCacheError() { c.cacheErrorsTotal.Inc() }

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
