package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firewatch_feed_fetches_total",
			Help: "Total detection feed fetches by outcome",
		},
		[]string{"outcome"},
	)

	FeedFetchLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "firewatch_feed_fetch_latency_seconds",
			Help:    "Detection feed fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	MetricsFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firewatch_metrics_fetches_total",
			Help: "Total aggregate metrics fetches by outcome",
		},
		[]string{"outcome"},
	)

	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firewatch_verifications_total",
			Help: "Total verification submissions by verdict and outcome",
		},
		[]string{"verdict", "outcome"},
	)

	RefreshCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firewatch_refresh_cycles_total",
			Help: "Total refresh cycles by outcome",
		},
		[]string{"outcome"},
	)

	StaleRendersDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "firewatch_stale_renders_discarded_total",
			Help: "Refresh responses discarded because a newer cycle superseded them",
		},
	)
)
