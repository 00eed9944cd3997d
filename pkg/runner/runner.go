// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package runner

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matchforge/engine/pkg/constants"
	"github.com/matchforge/engine/pkg/envelope"
	"github.com/matchforge/engine/pkg/lobby"
	"github.com/matchforge/engine/pkg/metrics"
	"github.com/matchforge/engine/pkg/mmerrors"
	"github.com/matchforge/engine/pkg/queue"
)

// Runner is the periodic tick loop that invokes QueueManager across queues
// in priority order under a per-tick budget (spec §4.8, C13). It owns only
// its loop flag; all durable state lives behind persistence.
type Runner struct {
	config  Config
	queues  *queue.Manager
	lobbies *lobby.Manager
	metrics metrics.Collector

	running atomic.Bool
	stopCh  chan struct{}
	doneWg  sync.WaitGroup
}

// New constructs a Runner over queueManager and lobbyManager, reporting to
// collector.
func New(config Config, queueManager *queue.Manager, lobbyManager *lobby.Manager, collector metrics.Collector) *Runner {
	return &Runner{
		config:  config,
		queues:  queueManager,
		lobbies: lobbyManager,
		metrics: collector,
	}
}

// Start runs the tick loop until Stop is called or ctx is cancelled.
// Returns InvalidConfiguration if the Runner is already running.
func (r *Runner) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return mmerrors.InvalidConfiguration("runner is already running")
	}

	r.stopCh = make(chan struct{})
	r.doneWg.Add(1)

	go r.loop(ctx)

	return nil
}

// Stop is cooperative: it sets a flag observed at the next tick boundary,
// then blocks until the in-flight tick (if any) completes.
func (r *Runner) Stop() {
	if !r.running.CompareAndSwap(true, false) {
		return
	}

	close(r.stopCh)
	r.doneWg.Wait()
}

// IsRunning reports whether the tick loop is active.
func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

func (r *Runner) loop(ctx context.Context) {
	defer r.doneWg.Done()

	ticker := time.NewTicker(r.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			if !r.running.Load() {
				return
			}

			r.tick(ctx)
		}
	}
}

// tick processes every enabled queue in ascending priority order, stopping
// once maxMatchesPerTick is reached.
func (r *Runner) tick(ctx context.Context) {
	scope := envelope.NewRootScope(ctx, "Runner.tick")
	defer scope.Finish()

	names := r.orderedQueueNames()

	total := 0
	for _, name := range names {
		if r.config.MaxMatchesPerTick > 0 && total >= r.config.MaxMatchesPerTick {
			break
		}

		budget := r.config.Queues[name].MaxConcurrentMatches
		if budget <= 0 {
			budget = r.config.MaxMatchesPerTick
		}
		if r.config.MaxMatchesPerTick > 0 {
			remaining := r.config.MaxMatchesPerTick - total
			if remaining < budget || budget == 0 {
				budget = remaining
			}
		}

		queueStart := time.Now()
		found, err := r.processQueue(scope, name, budget)
		r.metrics.AddTickElapsedTimeMs(name, time.Since(queueStart))

		if err != nil {
			scope.Log.WithField("queue", name).WithError(err).Error("matchmaking tick failed for queue")

			continue
		}

		total += found
	}
}

// orderedQueueNames returns enabled queues from config, sorted by ascending
// priority.
func (r *Runner) orderedQueueNames() []string {
	names := make([]string, 0, len(r.config.Queues))
	for name, schedule := range r.config.Queues {
		if schedule.Enabled {
			names = append(names, name)
		}
	}

	sort.Slice(names, func(i, j int) bool {
		return r.config.Queues[names[i]].Priority < r.config.Queues[names[j]].Priority
	})

	return names
}

// processQueue finds matches for one queue, consumes up to maxMatches of
// them, and creates a Lobby for each. A persistence failure during Consume
// aborts this queue's tick with no partial commit (spec §4.8).
func (r *Runner) processQueue(scope *envelope.Scope, queueName string, maxMatches int) (int, error) {
	results, skips, err := r.queues.FindMatches(queueName)
	if err != nil {
		return 0, err
	}

	for _, skip := range skips {
		r.metrics.AddUnmatchedReason(queueName, skip.Reason)
	}

	if maxMatches > 0 && len(results) > maxMatches {
		results = results[:maxMatches]
	}

	if len(results) == 0 {
		return 0, nil
	}

	if err := r.queues.Consume(scope, queueName, results); err != nil {
		return 0, mmerrors.Persistence("Consume", err)
	}

	format, err := r.queues.Format(queueName)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, result := range results {
		l, err := r.lobbies.CreateFromMatch(scope, result, format, lobby.Metadata{QueueName: queueName})
		if err != nil {
			scope.Log.WithField("queue", queueName).WithError(err).Error("failed to create lobby from match; entries already consumed")

			continue
		}

		if r.config.AutoDispatch {
			r.autoDispatch(scope, l.ID)
		}

		created++
	}

	r.metrics.AddMatchesFormed(queueName, created)

	return created, nil
}

// autoDispatch synthesizes a no-readiness-gating mode for headless
// workflows: Forming -> WaitingForReady -> Ready -> Dispatched, immediately,
// by marking every player ready itself rather than waiting for external
// signals (spec §4.8).
func (r *Runner) autoDispatch(scope *envelope.Scope, lobbyID string) {
	l, err := r.lobbies.Advance(scope, lobbyID)
	if err != nil {
		scope.Log.WithField("lobbyID", lobbyID).WithError(err).Error("auto-dispatch: advance failed")

		return
	}

	for _, playerID := range l.PlayerIDs {
		if _, err := r.lobbies.MarkReady(scope, lobbyID, playerID); err != nil {
			scope.Log.WithField("lobbyID", lobbyID).WithError(err).Error("auto-dispatch: mark ready failed")

			return
		}
	}

	if _, err := r.lobbies.Dispatch(scope, lobbyID, constants.AutoDispatchServerID); err != nil {
		scope.Log.WithField("lobbyID", lobbyID).WithError(err).Error("auto-dispatch: dispatch failed")
	}
}
