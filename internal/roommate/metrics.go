// internal/roommate/metrics.go

package roommate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	swipesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roommate_swipes_total",
			Help: "Total number of swipes recorded",
		},
		[]string{"action"},
	)

	matchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roommate_matches_total",
			Help: "Total number of matches created",
		},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roommate_compatibility_scores",
			Help:    "Distribution of compatibility scores of served candidates",
			Buckets: prometheus.LinearBuckets(0, 10, 15),
		},
	)

	candidatesExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roommate_candidates_exhausted_total",
			Help: "Times a user asked for a candidate and none were left",
		},
	)

	storeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roommate_store_errors_total",
			Help: "Store failures by operation",
		},
		[]string{"operation"},
	)
)

func RecordSwipe(action SwipeAction) {
	swipesTotal.WithLabelValues(string(action)).Inc()
}

func RecordMatch() {
	matchesTotal.Inc()
}

func RecordCompatibilityScore(score float64) {
	compatibilityScores.Observe(score)
}

func RecordCandidatesExhausted() {
	candidatesExhausted.Inc()
}

func RecordStoreError(operation string) {
	storeErrors.WithLabelValues(operation).Inc()
}
