// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package queue

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchforge/engine/pkg/envelope"
	"github.com/matchforge/engine/pkg/metrics"
	"github.com/matchforge/engine/pkg/persistence/memory"
	"github.com/matchforge/engine/pkg/rating"
)

func testScope() *envelope.Scope {
	return envelope.NewRootScope(context.Background(), "test")
}

func newManager(t *testing.T, config Config) *Manager {
	t.Helper()

	m := NewManager(memory.New(0), metrics.New(prometheus.NewRegistry()))
	scope := testScope()
	defer scope.Finish()

	require.NoError(t, m.RegisterQueue(scope, config))

	return m
}

// S1: Basic 1v1.
func TestQueueManager_Basic1v1(t *testing.T) {
	m := newManager(t, Config{Name: "q", Format: OneVOne(), Constraints: Permissive()})
	scope := testScope()
	defer scope.Finish()

	_, err := m.JoinSolo(scope, "q", "A", rating.Default(), EntryMetadata{})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = m.JoinSolo(scope, "q", "B", rating.Default(), EntryMetadata{})
	require.NoError(t, err)

	results, _, err := m.FindMatches("q")
	require.NoError(t, err)
	require.Len(t, results, 1)

	match := results[0]
	require.Len(t, match.Entries, 2)
	assert.Equal(t, "A", match.Entries[0].PlayerIDs[0])
	assert.Equal(t, "B", match.Entries[1].PlayerIDs[0])
	assert.Equal(t, []int{0, 1}, match.TeamAssignments)
}

// S2: Wait-time relaxation.
func TestQueueManager_WaitTimeRelaxation(t *testing.T) {
	constraints := MatchConstraints{MaxRatingDelta: 100, ExpansionRate: 10}
	m := newManager(t, Config{Name: "q", Format: OneVOne(), Constraints: constraints})
	scope := testScope()
	defer scope.Finish()

	ratingA := rating.Rating{Rating: 1500, Deviation: 350, Volatility: 0.06}
	ratingB := rating.Rating{Rating: 1700, Deviation: 350, Volatility: 0.06}

	_, err := m.JoinSolo(scope, "q", "A", ratingA, EntryMetadata{})
	require.NoError(t, err)
	_, err = m.JoinSolo(scope, "q", "B", ratingB, EntryMetadata{})
	require.NoError(t, err)

	results, _, err := m.FindMatches("q")
	require.NoError(t, err)
	assert.Empty(t, results, "delta of 200 exceeds the unrelaxed window of 100")

	// backdate both entries by 11s to simulate elapsed wait time
	q := m.queues["q"]
	q.mu.Lock()
	for i := range q.entries {
		q.entries[i].JoinedAt = time.Now().Add(-11 * time.Second)
	}
	q.mu.Unlock()

	results, _, err = m.FindMatches("q")
	require.NoError(t, err)
	assert.Len(t, results, 1, "effectiveDelta should have widened to 100+110=210 >= 200")
}

// S3: Party respects team size.
func TestQueueManager_PartyNeverSplitsAcrossTeams(t *testing.T) {
	m := newManager(t, Config{Name: "q", Format: TeamVTeam(2), Constraints: Permissive()})
	scope := testScope()
	defer scope.Finish()

	_, err := m.JoinParty(scope, "q", "party-1", []string{"P1", "P2"}, rating.Default(), EntryMetadata{})
	require.NoError(t, err)
	_, err = m.JoinSolo(scope, "q", "S1", rating.Default(), EntryMetadata{})
	require.NoError(t, err)
	_, err = m.JoinSolo(scope, "q", "S2", rating.Default(), EntryMetadata{})
	require.NoError(t, err)

	results, _, err := m.FindMatches("q")
	require.NoError(t, err)
	require.Len(t, results, 1)

	match := results[0]
	for i, e := range match.Entries {
		if e.PartyID == "party-1" {
			assert.Len(t, e.PlayerIDs, 2)
			// party must land entirely on one team: TeamAssignments is per
			// entry, so the party's team holds the party entry and nothing else
			team := match.TeamAssignments[i]
			assert.Equal(t, 1, countTeam(match.TeamAssignments, team))
		}
	}
}

func countTeam(assignments []int, team int) int {
	count := 0
	for _, a := range assignments {
		if a == team {
			count++
		}
	}

	return count
}

// S4: Duplicate rejected, global uniqueness across queues.
func TestQueueManager_DuplicateAcrossQueuesRejected(t *testing.T) {
	m := NewManager(memory.New(0), metrics.New(prometheus.NewRegistry()))
	scope := testScope()
	defer scope.Finish()

	require.NoError(t, m.RegisterQueue(scope, Config{Name: "q1", Format: OneVOne(), Constraints: Permissive()}))
	require.NoError(t, m.RegisterQueue(scope, Config{Name: "q2", Format: OneVOne(), Constraints: Permissive()}))

	_, err := m.JoinSolo(scope, "q1", "A", rating.Default(), EntryMetadata{})
	require.NoError(t, err)

	_, err = m.JoinSolo(scope, "q2", "A", rating.Default(), EntryMetadata{})
	assert.True(t, err != nil)

	results, _, err := m.FindMatches("q2")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQueueManager_JoinLeaveRoundTrip(t *testing.T) {
	m := newManager(t, Config{Name: "q", Format: OneVOne(), Constraints: Permissive()})
	scope := testScope()
	defer scope.Finish()

	sizeBefore, err := m.Size("q")
	require.NoError(t, err)

	_, err = m.JoinSolo(scope, "q", "A", rating.Default(), EntryMetadata{})
	require.NoError(t, err)

	require.NoError(t, m.Leave(scope, "q", "A"))

	sizeAfter, err := m.Size("q")
	require.NoError(t, err)
	assert.Equal(t, sizeBefore, sizeAfter)

	// player should be free to rejoin any queue after leaving
	_, err = m.JoinSolo(scope, "q", "A", rating.Default(), EntryMetadata{})
	assert.NoError(t, err)
}

func TestQueueManager_LeaveFailsWhenNotQueued(t *testing.T) {
	m := newManager(t, Config{Name: "q", Format: OneVOne(), Constraints: Permissive()})
	scope := testScope()
	defer scope.Finish()

	err := m.Leave(scope, "q", "ghost")
	assert.Error(t, err)
}

func TestQueueManager_EmptyQueueFindMatchesReturnsEmpty(t *testing.T) {
	m := newManager(t, Config{Name: "q", Format: OneVOne(), Constraints: Permissive()})

	results, _, err := m.FindMatches("q")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQueueManager_ConsumeIsIdempotent(t *testing.T) {
	m := newManager(t, Config{Name: "q", Format: OneVOne(), Constraints: Permissive()})
	scope := testScope()
	defer scope.Finish()

	_, err := m.JoinSolo(scope, "q", "A", rating.Default(), EntryMetadata{})
	require.NoError(t, err)
	_, err = m.JoinSolo(scope, "q", "B", rating.Default(), EntryMetadata{})
	require.NoError(t, err)

	results, _, err := m.FindMatches("q")
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NoError(t, m.Consume(scope, "q", results))
	assert.NoError(t, m.Consume(scope, "q", results), "consuming already-removed entries must be a no-op, not an error")

	size, err := m.Size("q")
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestQueueManager_RegisterQueueRejectsDuplicate(t *testing.T) {
	m := newManager(t, Config{Name: "q", Format: OneVOne(), Constraints: Permissive()})
	scope := testScope()
	defer scope.Finish()

	err := m.RegisterQueue(scope, Config{Name: "q", Format: OneVOne(), Constraints: Permissive()})
	assert.Error(t, err)
}
