// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package runner

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchforge/engine/pkg/envelope"
	"github.com/matchforge/engine/pkg/lobby"
	"github.com/matchforge/engine/pkg/metrics"
	"github.com/matchforge/engine/pkg/persistence/memory"
	"github.com/matchforge/engine/pkg/queue"
	"github.com/matchforge/engine/pkg/rating"
)

func testScope() *envelope.Scope {
	return envelope.NewRootScope(context.Background(), "test")
}

func TestRunner_StartRejectsDoubleStart(t *testing.T) {
	store := memory.New(0)
	collector := metrics.New(prometheus.NewRegistry())
	qm := queue.NewManager(store, collector)
	lm := lobby.NewManager(store, rating.NewElo(), collector)

	r := New(Config{TickInterval: time.Hour, Queues: map[string]QueueSchedule{}}, qm, lm, collector)

	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	err := r.Start(context.Background())
	assert.Error(t, err)
}

func TestRunner_StopIsIdempotent(t *testing.T) {
	store := memory.New(0)
	collector := metrics.New(prometheus.NewRegistry())
	qm := queue.NewManager(store, collector)
	lm := lobby.NewManager(store, rating.NewElo(), collector)

	r := New(Config{TickInterval: time.Hour, Queues: map[string]QueueSchedule{}}, qm, lm, collector)

	require.NoError(t, r.Start(context.Background()))
	r.Stop()
	r.Stop() // must not panic or block
	assert.False(t, r.IsRunning())
}

func TestRunner_TickFormsMatchAndCreatesLobby(t *testing.T) {
	store := memory.New(0)
	collector := metrics.New(prometheus.NewRegistry())
	qm := queue.NewManager(store, collector)
	lm := lobby.NewManager(store, rating.NewElo(), collector)

	scope := testScope()
	defer scope.Finish()

	require.NoError(t, qm.RegisterQueue(scope, queue.Config{
		Name:        "q",
		Format:      queue.OneVOne(),
		Constraints: queue.Permissive(),
	}))

	_, err := qm.JoinSolo(scope, "q", "A", rating.Default(), queue.EntryMetadata{})
	require.NoError(t, err)
	_, err = qm.JoinSolo(scope, "q", "B", rating.Default(), queue.EntryMetadata{})
	require.NoError(t, err)

	r := New(Config{
		TickInterval:      time.Hour,
		MaxMatchesPerTick: 10,
		Queues: map[string]QueueSchedule{
			"q": {Enabled: true, Priority: 1, MaxConcurrentMatches: 10},
		},
	}, qm, lm, collector)

	r.tick(context.Background())

	size, err := qm.Size("q")
	require.NoError(t, err)
	assert.Equal(t, 0, size, "matched entries must be consumed from the queue")

	history := store.MatchHistory()
	assert.Empty(t, history, "without autoDispatch the lobby stays open, not archived")
}

func TestRunner_AutoDispatchAdvancesThroughDAGToDispatched(t *testing.T) {
	store := memory.New(0)
	collector := metrics.New(prometheus.NewRegistry())
	qm := queue.NewManager(store, collector)
	lm := lobby.NewManager(store, rating.NewElo(), collector)

	scope := testScope()
	defer scope.Finish()

	require.NoError(t, qm.RegisterQueue(scope, queue.Config{
		Name:        "q",
		Format:      queue.OneVOne(),
		Constraints: queue.Permissive(),
	}))

	_, err := qm.JoinSolo(scope, "q", "A", rating.Default(), queue.EntryMetadata{})
	require.NoError(t, err)
	_, err = qm.JoinSolo(scope, "q", "B", rating.Default(), queue.EntryMetadata{})
	require.NoError(t, err)

	r := New(Config{
		TickInterval:      time.Hour,
		MaxMatchesPerTick: 10,
		AutoDispatch:      true,
		Queues: map[string]QueueSchedule{
			"q": {Enabled: true, Priority: 1, MaxConcurrentMatches: 10},
		},
	}, qm, lm, collector)

	r.tick(context.Background())

	lobbies := 0
	for range store.MatchHistory() {
		lobbies++
	}
	assert.Equal(t, 0, lobbies, "autoDispatch only reaches Dispatched, not Closed")
}

func TestRunner_RespectsMaxMatchesPerTick(t *testing.T) {
	store := memory.New(0)
	collector := metrics.New(prometheus.NewRegistry())
	qm := queue.NewManager(store, collector)
	lm := lobby.NewManager(store, rating.NewElo(), collector)

	scope := testScope()
	defer scope.Finish()

	require.NoError(t, qm.RegisterQueue(scope, queue.Config{
		Name:        "q",
		Format:      queue.OneVOne(),
		Constraints: queue.Permissive(),
	}))

	for _, p := range []string{"A", "B", "C", "D"} {
		_, err := qm.JoinSolo(scope, "q", p, rating.Default(), queue.EntryMetadata{})
		require.NoError(t, err)
	}

	r := New(Config{
		TickInterval:      time.Hour,
		MaxMatchesPerTick: 1,
		Queues: map[string]QueueSchedule{
			"q": {Enabled: true, Priority: 1, MaxConcurrentMatches: 10},
		},
	}, qm, lm, collector)

	r.tick(context.Background())

	size, err := qm.Size("q")
	require.NoError(t, err)
	assert.Equal(t, 2, size, "only one of the two possible matches should be consumed this tick")
}
