// Package monitoring exposes Prometheus metrics for the refresh pipeline.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RefreshesTotal counts per-artist refresh outcomes by status:
	// "success", "not_found", "http_error", "network_error", "store_error".
	RefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nextlive_refreshes_total",
			Help: "Per-artist refresh outcomes",
		},
		[]string{"status"},
	)

	// ExtractedCandidates observes how many candidates each successful
	// extraction produced.
	ExtractedCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nextlive_extracted_candidates",
			Help:    "Event candidates extracted per artist page",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		},
	)

	// FetchDuration observes artist page fetch latency.
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nextlive_fetch_duration_seconds",
			Help:    "TicketDive artist page fetch duration",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RefreshRunsTotal counts whole refresh-all runs.
	RefreshRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nextlive_refresh_runs_total",
			Help: "Full refresh runs triggered",
		},
	)
)
