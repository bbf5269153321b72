package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the fetcher and the walker.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesTotal      *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
	FetchErrors     *prometheus.CounterVec
	CacheHitsTotal  prometheus.Counter
	RecordsTotal    prometheus.Counter
	ItemErrorsTotal *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookparser_pages_total",
			Help: "Catalog pages processed by outcome.",
		},
		[]string{"outcome"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookparser_fetch_duration_seconds",
			Help:    "HTTP latency of catalog page fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookparser_fetch_errors_total",
			Help: "Failed page fetches by error kind.",
		},
		[]string{"kind"},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookparser_cache_hits_total",
			Help: "Page fetches served from the in-memory cache.",
		},
	)
	records := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookparser_records_total",
			Help: "Listings parsed into records.",
		},
	)
	itemErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookparser_item_errors_total",
			Help: "Listings skipped by failing field.",
		},
		[]string{"field"},
	)

	registry.MustRegister(pages, fetchDuration, fetchErrors, cacheHits, records, itemErrors)

	return &Metrics{
		Registry:        registry,
		PagesTotal:      pages,
		FetchDuration:   fetchDuration,
		FetchErrors:     fetchErrors,
		CacheHitsTotal:  cacheHits,
		RecordsTotal:    records,
		ItemErrorsTotal: itemErrors,
	}
}

// IncPage counts a processed page by outcome ("ok" or "failed").
func (m *Metrics) IncPage(outcome string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncFetchError counts a failed fetch.
func (m *Metrics) IncFetchError(kind FetchErrorKind) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(string(kind)).Inc()
}

// IncCacheHit counts a fetch served from cache.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// IncRecords counts parsed records.
func (m *Metrics) IncRecords() {
	if m == nil {
		return
	}
	m.RecordsTotal.Inc()
}

// IncItemError counts a skipped listing.
func (m *Metrics) IncItemError(field string) {
	if m == nil {
		return
	}
	m.ItemErrorsTotal.WithLabelValues(field).Inc()
}
