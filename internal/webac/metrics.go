// SPDX-License-Identifier: Apache-2.0

package webac

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// decisionsTotal counts every accessModes outcome, labeled by the
	// required mode and whether it was granted.
	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webac_decisions_total",
			Help: "Total number of access-control decisions",
		},
		[]string{"mode", "decision"},
	)

	// decisionDuration tracks decision latency, separated by cache hit so
	// the singleflight-collapsed cost of a miss is visible apart from the
	// near-zero cost of a hit.
	decisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webac_decision_duration_seconds",
			Help:    "Duration of access-control decisions in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"cache_hit"},
	)

	cacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webac_cache_hits_total",
			Help: "Total number of authorization cache hits",
		},
	)

	cacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webac_cache_misses_total",
			Help: "Total number of authorization cache misses",
		},
	)

	cacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webac_cache_entries",
			Help: "Current number of entries in the authorization cache",
		},
	)

	singleflightSharedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webac_singleflight_shared_total",
			Help: "Total number of decisions served by a shared in-flight computation",
		},
	)
)

// RecordDecision records a single accessModes outcome for metrics.
func RecordDecision(mode Mode, granted bool, duration time.Duration, cacheHit bool) {
	decision := "denied"
	if granted {
		decision = "allowed"
	}
	decisionsTotal.WithLabelValues(mode.String(), decision).Inc()

	hitLabel := "false"
	if cacheHit {
		hitLabel = "true"
	}
	decisionDuration.WithLabelValues(hitLabel).Observe(duration.Seconds())

	if cacheHit {
		cacheHitsTotal.Inc()
	} else {
		cacheMissesTotal.Inc()
	}
}

// RecordSingleflightShared records that a cache miss was served by a
// computation already in flight for the same key, rather than triggering a
// second evaluator call.
func RecordSingleflightShared() {
	singleflightSharedTotal.Inc()
}

// UpdateCacheSize refreshes the cache-size gauge; callers should poll this
// from the same background worker that runs CleanupExpired.
func UpdateCacheSize(size int) {
	cacheSize.Set(float64(size))
}
