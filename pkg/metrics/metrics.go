// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package metrics exposes the engine's operational prometheus metrics:
// queue depth, tick duration, matches formed, lobby transitions, and rating
// updates. This is ambient instrumentation, not the analytics/dashboard
// aggregation the spec places out of scope.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the metrics surface the Runner, QueueManager, and
// LobbyManager report into.
type Collector interface {
	SetQueueDepth(queueName string, depth int)
	AddTickElapsedTimeMs(queueName string, elapsed time.Duration)
	AddMatchesFormed(queueName string, count int)
	AddLobbyTransition(fromState, toState string)
	AddUnmatchedReason(queueName, reason string)
	AddRatingUpdate(algorithm string)
}

// New builds a Collector registered against registry.
func New(registry *prometheus.Registry) Collector {
	return setupPrometheusMetrics(registry)
}
