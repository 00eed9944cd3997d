// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchforge/engine/pkg/persistence"
	"github.com/matchforge/engine/pkg/rating"
)

// newTestStore requires a real Postgres reachable at MATCHFORGE_TEST_POSTGRES_DSN.
// Unlike the Redis backend, the example pack carries no in-process Postgres
// fake, so these tests skip rather than run against nothing.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("MATCHFORGE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MATCHFORGE_TEST_POSTGRES_DSN not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)

	s := New(pool)
	require.NoError(t, s.InitSchema(context.Background()))

	t.Cleanup(pool.Close)

	return s
}

func TestStore_PlayerRatingRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := rating.Rating{Rating: 1500, Deviation: 300, Volatility: 0.06}
	require.NoError(t, s.SavePlayerRating(ctx, "pg-alice", r))

	got, err := s.LoadPlayerRating(ctx, "pg-alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r, *got)
}

func TestStore_LoadPlayerRatingMissingReturnsNil(t *testing.T) {
	s := newTestStore(t)

	got, err := s.LoadPlayerRating(context.Background(), "pg-ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_QueueEntryLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := persistence.QueueEntryRecord{
		ID:        "pg-e1",
		QueueName: "pg-ranked",
		PlayerIDs: []string{"pg-alice", "pg-bob"},
		Roles:     []string{"dps", "support"},
		JoinedAt:  1000,
		Custom:    map[string]interface{}{"platform": "pc"},
	}
	require.NoError(t, s.SaveQueueEntry(ctx, entry))

	entries, err := s.LoadQueueEntries(ctx, "pg-ranked")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.PlayerIDs, entries[0].PlayerIDs)
	assert.Equal(t, entry.Roles, entries[0].Roles)
	assert.Equal(t, "pc", entries[0].Custom["platform"])

	require.NoError(t, s.DeleteQueueEntry(ctx, "pg-e1"))

	entries, err = s.LoadQueueEntries(ctx, "pg-ranked")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_QueueEntriesOrderedByJoinScore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveQueueEntry(ctx, persistence.QueueEntryRecord{ID: "pg-late", QueueName: "pg-order", PlayerIDs: []string{"x"}, JoinedAt: 200}))
	require.NoError(t, s.SaveQueueEntry(ctx, persistence.QueueEntryRecord{ID: "pg-early", QueueName: "pg-order", PlayerIDs: []string{"y"}, JoinedAt: 100}))

	entries, err := s.LoadQueueEntries(ctx, "pg-order")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "pg-early", entries[0].ID)
	assert.Equal(t, "pg-late", entries[1].ID)
}

func TestStore_PartyLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := persistence.PartyRecord{ID: "pg-p1", LeaderID: "pg-alice", Members: []string{"pg-alice", "pg-bob"}, MaxSize: 4}
	require.NoError(t, s.SaveParty(ctx, p))

	got, err := s.LoadParty(ctx, "pg-p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Members, got.Members)

	require.NoError(t, s.DeleteParty(ctx, "pg-p1"))

	got, err = s.LoadParty(ctx, "pg-p1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_LobbyLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	l := persistence.LobbyRecord{
		ID:        "pg-l1",
		MatchID:   "pg-m1",
		State:     "Forming",
		Teams:     [][]string{{"pg-alice"}, {"pg-bob"}},
		PlayerIDs: []string{"pg-alice", "pg-bob"},
		Metadata:  map[string]interface{}{"region": "us-west"},
	}
	require.NoError(t, s.SaveLobby(ctx, l))

	got, err := s.LoadLobby(ctx, "pg-l1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, l.State, got.State)
	assert.Equal(t, l.Teams, got.Teams)
	assert.Equal(t, "us-west", got.Metadata["region"])

	require.NoError(t, s.DeleteLobby(ctx, "pg-l1"))

	got, err = s.LoadLobby(ctx, "pg-l1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_SaveMatchResultIsAppendOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveMatchResult(ctx, persistence.MatchHistoryRecord{
			Lobby: persistence.LobbyRecord{ID: "pg-l1", MatchID: "pg-append-match"},
		}))
	}

	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM match_history WHERE match_id = $1`, "pg-append-match").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
