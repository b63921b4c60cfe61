package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы проверки наличия
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeTimeout  = "timeout"
	OutcomeFault    = "fault"
)

var (
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_availability_probes_total",
			Help: "Total number of catalog availability probes by system and outcome",
		},
		[]string{"system", "outcome"},
	)

	ProbeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_availability_probe_duration_seconds",
			Help:    "Duration of catalog availability probes in seconds",
			Buckets: []float64{0.5, 1, 2, 3, 5, 8, 13},
		},
		[]string{"system"},
	)

	DiscoveryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_discovery_total",
			Help: "Total number of branch discoveries by the source that produced the result",
		},
		[]string{"source"},
	)

	DiscoveryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "library_discovery_cache_hits_total",
			Help: "Total number of branch discoveries served from cache",
		},
	)

	OverpassAttemptsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_overpass_attempts_failed_total",
			Help: "Total number of failed Overpass attempts per mirror",
		},
		[]string{"endpoint"},
	)
)
