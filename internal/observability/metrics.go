// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus collectors for loading, caching and
// sessions. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// FilesFetched counts data file fetches, labeled by outcome (ok, missing, error, parse_error).
	FilesFetched *prometheus.CounterVec

	// RecordsLoaded counts records appended to the store, labeled by journal.
	RecordsLoaded *prometheus.CounterVec

	// JournalLoads counts finished journal loads, labeled by outcome (ok, partial, failed).
	JournalLoads *prometheus.CounterVec

	// JournalLoadDuration observes how long a whole journal load takes, in seconds.
	JournalLoadDuration prometheus.Histogram

	// CacheLookups counts result cache lookups, labeled by result (hit, miss, stale).
	CacheLookups *prometheus.CounterVec

	// CacheEvictions counts FIFO evictions from the result cache.
	CacheEvictions prometheus.Counter

	// Searches counts query engine executions.
	Searches prometheus.Counter

	// SearchResults observes the size of computed results.
	SearchResults prometheus.Histogram

	// ActiveSessions is the number of open presentation sessions.
	ActiveSessions prometheus.Gauge

	// PagesScraped counts scraper page fetches, labeled by kind (listing, paper) and outcome.
	PagesScraped *prometheus.CounterVec
}

// NewMetrics registers all collectors under namespace with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FilesFetched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "files_fetched_total",
			Help:      "Data file fetches by outcome.",
		}, []string{"outcome"}),
		RecordsLoaded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "records_loaded_total",
			Help:      "Records appended to the store by journal.",
		}, []string{"journal"}),
		JournalLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "journal_loads_total",
			Help:      "Finished journal loads by outcome.",
		}, []string{"outcome"}),
		JournalLoadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "journal_load_duration_seconds",
			Help:      "Duration of whole journal loads.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Result cache lookups by result.",
		}, []string{"result"}),
		CacheEvictions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries evicted from the result cache.",
		}),
		Searches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "searches_total",
			Help:      "Query engine executions.",
		}),
		SearchResults: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "results",
			Help:      "Number of records in computed results.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "active_sessions",
			Help:      "Open presentation sessions.",
		}),
		PagesScraped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scrape",
			Name:      "pages_total",
			Help:      "Scraper page fetches by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
}

// RecordFileFetch counts one data file fetch.
func (m *Metrics) RecordFileFetch(outcome string) {
	if m == nil {
		return
	}
	m.FilesFetched.WithLabelValues(outcome).Inc()
}

// RecordJournalLoad counts a finished journal load and its record total.
func (m *Metrics) RecordJournalLoad(journal, outcome string, records int, seconds float64) {
	if m == nil {
		return
	}
	m.JournalLoads.WithLabelValues(outcome).Inc()
	m.RecordsLoaded.WithLabelValues(journal).Add(float64(records))
	m.JournalLoadDuration.Observe(seconds)
}

// RecordCacheLookup counts one cache lookup.
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheEviction counts one FIFO eviction.
func (m *Metrics) RecordCacheEviction() {
	if m == nil {
		return
	}
	m.CacheEvictions.Inc()
}

// RecordSearch counts one query engine run and its result size.
func (m *Metrics) RecordSearch(results int) {
	if m == nil {
		return
	}
	m.Searches.Inc()
	m.SearchResults.Observe(float64(results))
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

// RecordPage counts one scraper page fetch.
func (m *Metrics) RecordPage(kind, outcome string) {
	if m == nil {
		return
	}
	m.PagesScraped.WithLabelValues(kind, outcome).Inc()
}
