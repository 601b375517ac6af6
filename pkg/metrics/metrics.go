// Package metrics defines the Prometheus metric collectors for the
// search service and exposes an HTTP handler for scraping. These are
// ambient, process-local counters: they never persist across restarts
// and play no role in scoring or corpus state, so they do not
// reintroduce the cross-request learning the core spec excludes.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchQueriesTotal   prometheus.Counter
	SearchLatency        prometheus.Histogram
	SearchResultsCount   prometheus.Histogram
	ScrapesTotal         *prometheus.CounterVec
	CacheHitsTotal       *prometheus.CounterVec
	InitFailuresTotal    *prometheus.CounterVec
	CorpusSize           *prometheus.GaugeVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total fuzzy search queries served across all corpora.",
			},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Fan-out search latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		ScrapesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_scrapes_total",
				Help: "Total scraping runs by record type and outcome (cache_hit, scraped, error).",
			},
			[]string{"type", "outcome"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_cache_hits_total",
				Help: "Cache hits/misses against the on-disk scraped-corpus JSON cache.",
			},
			[]string{"type", "hit"},
		),
		InitFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_init_failures_total",
				Help: "Initialization failures by record type.",
			},
			[]string{"type"},
		),
		CorpusSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "corpus_size",
				Help: "Number of records in each corpus's current index.",
			},
			[]string{"type"},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.ScrapesTotal,
		m.CacheHitsTotal,
		m.InitFailuresTotal,
		m.CorpusSize,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCacheHit records a corpus cache lookup outcome. It satisfies
// internal/scrape.Metrics structurally, so the scraping runner can
// report through this collector without importing this package.
func (m *Metrics) ObserveCacheHit(key string, hit bool) {
	m.CacheHitsTotal.WithLabelValues(key, strconv.FormatBool(hit)).Inc()
}

// ObserveScrapeOutcome records a scraping run's outcome
// ("cache_hit", "scraped" or "error") for key.
func (m *Metrics) ObserveScrapeOutcome(key, outcome string) {
	m.ScrapesTotal.WithLabelValues(key, outcome).Inc()
}

// ObserveInitFailure records an initialization failure for key.
func (m *Metrics) ObserveInitFailure(key string) {
	m.InitFailuresTotal.WithLabelValues(key).Inc()
}

// SetCorpusSize records the number of records currently indexed for key.
func (m *Metrics) SetCorpusSize(key string, n int) {
	m.CorpusSize.WithLabelValues(key).Set(float64(n))
}
