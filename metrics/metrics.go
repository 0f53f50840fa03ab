package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_analyses_completed_total",
			Help: "Total number of completed indicator analyses",
		},
		[]string{"type"},
	)

	ClassificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "argus_classification_failures_total",
			Help: "Total number of failed classifier calls",
		},
	)

	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_provider_errors_total",
			Help: "Total number of failed intel provider lookups",
		},
		[]string{"provider"},
	)

	AlertsTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_alerts_triggered_total",
			Help: "Total number of triggered alerts",
		},
		[]string{"severity"},
	)

	EnrichmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "argus_enrichment_duration_seconds",
			Help:    "Time taken to enrich one indicator across all providers",
			Buckets: prometheus.DefBuckets,
		},
	)
)
