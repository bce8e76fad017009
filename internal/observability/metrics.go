// Package observability exposes Prometheus collectors for the award pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	prDetectedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamification_service",
		Subsystem: "awards",
		Name:      "records_broken_total",
		Help:      "Number of personal records set, labeled by record type.",
	}, []string{"record_type"})

	badgeAwardedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamification_service",
		Subsystem: "awards",
		Name:      "badges_awarded_total",
		Help:      "Number of badges awarded, labeled by badge.",
	}, []string{"badge_id"})

	awardConflictCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gamification_service",
		Subsystem: "awards",
		Name:      "transaction_conflicts_total",
		Help:      "Number of award transactions retried after a serialization conflict or deadlock.",
	})

	retryExhaustedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gamification_service",
		Subsystem: "awards",
		Name:      "retries_exhausted_total",
		Help:      "Number of entries whose award processing was deferred after exhausting retries.",
	})

	lastAwardGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gamification_service",
		Subsystem: "awards",
		Name:      "last_award_timestamp_seconds",
		Help:      "Unix timestamp of the most recent committed record or badge award.",
	})
)

func init() {
	prometheus.MustRegister(prDetectedCounter, badgeAwardedCounter, awardConflictCounter, retryExhaustedCounter, lastAwardGauge)
}

// RecordPRDetected counts a committed personal record.
func RecordPRDetected(recordType string) {
	prDetectedCounter.WithLabelValues(recordType).Inc()
	lastAwardGauge.Set(float64(time.Now().Unix()))
}

// RecordBadgeAwarded counts a committed badge award.
func RecordBadgeAwarded(badgeID string) {
	badgeAwardedCounter.WithLabelValues(badgeID).Inc()
	lastAwardGauge.Set(float64(time.Now().Unix()))
}

// RecordAwardConflict counts a retryable transaction conflict.
func RecordAwardConflict() {
	awardConflictCounter.Inc()
}

// RecordAwardRetryExhausted counts an entry deferred after bounded retries.
func RecordAwardRetryExhausted() {
	retryExhaustedCounter.Inc()
}
