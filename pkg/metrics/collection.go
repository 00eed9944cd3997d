// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type prometheusMetrics struct {
	queueDepth       prometheus.GaugeVec
	tickElapsedTime  prometheus.HistogramVec
	matchesFormed    prometheus.CounterVec
	lobbyTransitions prometheus.CounterVec
	unmatchedReasons prometheus.CounterVec
	ratingUpdates    prometheus.CounterVec
}

func setupPrometheusMetrics(registry *prometheus.Registry) prometheusMetrics {
	factory := promauto.With(registry)

	queueDepth := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "matchforge_queue_depth",
			Help: "Number of queue entries currently waiting, per queue",
		}, []string{"queue"})

	//nolint:promlinter
	tickElapsedTime := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchforge_tick_elapsed_time_ms",
			Help:    "A histogram of per-queue Runner tick elapsed time in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"queue"})

	matchesFormed := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchforge_matches_formed_total",
			Help: "Count of matches formed by the Matcher, per queue",
		}, []string{"queue"})

	lobbyTransitions := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchforge_lobby_transitions_total",
			Help: "Count of lobby state transitions",
		}, []string{"from_state", "to_state"})

	unmatchedReasons := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchforge_unmatched_reasons_total",
			Help: "Count of unmatched seed reasons during matchmaking, per queue and reason",
		}, []string{"queue", "reason"})

	ratingUpdates := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchforge_rating_updates_total",
			Help: "Count of player rating updates, per algorithm",
		}, []string{"algorithm"})

	return prometheusMetrics{
		queueDepth:       *queueDepth,
		tickElapsedTime:  *tickElapsedTime,
		matchesFormed:    *matchesFormed,
		lobbyTransitions: *lobbyTransitions,
		unmatchedReasons: *unmatchedReasons,
		ratingUpdates:    *ratingUpdates,
	}
}

func (m prometheusMetrics) SetQueueDepth(queueName string, depth int) {
	m.queueDepth.With(prometheus.Labels{"queue": queueName}).Set(float64(depth))
}

func (m prometheusMetrics) AddTickElapsedTimeMs(queueName string, elapsed time.Duration) {
	m.tickElapsedTime.With(prometheus.Labels{"queue": queueName}).Observe(float64(elapsed.Milliseconds()))
}

func (m prometheusMetrics) AddMatchesFormed(queueName string, count int) {
	m.matchesFormed.With(prometheus.Labels{"queue": queueName}).Add(float64(count))
}

func (m prometheusMetrics) AddLobbyTransition(fromState, toState string) {
	m.lobbyTransitions.With(prometheus.Labels{"from_state": fromState, "to_state": toState}).Add(1)
}

func (m prometheusMetrics) AddUnmatchedReason(queueName, reason string) {
	m.unmatchedReasons.With(prometheus.Labels{"queue": queueName, "reason": reason}).Add(1)
}

func (m prometheusMetrics) AddRatingUpdate(algorithm string) {
	m.ratingUpdates.With(prometheus.Labels{"algorithm": algorithm}).Add(1)
}
