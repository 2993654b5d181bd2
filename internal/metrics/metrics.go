package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecoveriesTotal tracks recovery outcomes by failure reason ("" = success).
	RecoveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waymeta_recoveries_total",
			Help: "Total number of recovery attempts by outcome",
		},
		[]string{"outcome"},
	)

	// RecoveryDuration tracks how long a full recovery pass takes.
	RecoveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waymeta_recovery_duration_seconds",
			Help:    "Duration of recovery attempts in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	// CDXRequestsTotal tracks CDX index queries by HTTP status class.
	CDXRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waymeta_cdx_requests_total",
			Help: "Total number of CDX index requests",
		},
		[]string{"status"},
	)

	// CDXCacheTotal tracks cache hits and misses for CDX queries.
	CDXCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waymeta_cdx_cache_total",
			Help: "CDX cache lookups by result",
		},
		[]string{"result"},
	)

	// SnapshotsTried tracks how many snapshots a recovery had to iterate
	// before finding usable data.
	SnapshotsTried = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waymeta_snapshots_tried",
			Help:    "Snapshots tried per recovery attempt",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		},
	)

	// PageFetchesTotal tracks archived-page fetches by result.
	PageFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waymeta_page_fetches_total",
			Help: "Archived page fetches by result",
		},
		[]string{"result"},
	)
)
