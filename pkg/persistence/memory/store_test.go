// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchforge/engine/pkg/persistence"
	"github.com/matchforge/engine/pkg/rating"
)

func TestStore_PlayerRatingRoundTrip(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	r := rating.Rating{Rating: 1500, Deviation: 350, Volatility: 0.06}
	require.NoError(t, s.SavePlayerRating(ctx, "alice", r))

	got, err := s.LoadPlayerRating(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r, *got)
}

func TestStore_LoadPlayerRatingMissingReturnsNil(t *testing.T) {
	s := New(0)

	got, err := s.LoadPlayerRating(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_PlayerRatingExpiresWithTTL(t *testing.T) {
	s := New(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, s.SavePlayerRating(ctx, "alice", rating.Default()))

	time.Sleep(30 * time.Millisecond)

	got, err := s.LoadPlayerRating(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got, "rating must expire once ratingTTL elapses")
}

func TestStore_QueueEntryLifecycle(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	entry := persistence.QueueEntryRecord{ID: "e1", QueueName: "ranked", PlayerIDs: []string{"alice", "bob"}, JoinedAt: 1000}
	require.NoError(t, s.SaveQueueEntry(ctx, entry))

	entries, err := s.LoadQueueEntries(ctx, "ranked")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)

	require.NoError(t, s.DeleteQueueEntry(ctx, "e1"))

	entries, err = s.LoadQueueEntries(ctx, "ranked")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_LoadQueueEntriesIsolatesQueues(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	require.NoError(t, s.SaveQueueEntry(ctx, persistence.QueueEntryRecord{ID: "e1", QueueName: "ranked"}))
	require.NoError(t, s.SaveQueueEntry(ctx, persistence.QueueEntryRecord{ID: "e2", QueueName: "casual"}))

	ranked, err := s.LoadQueueEntries(ctx, "ranked")
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "e1", ranked[0].ID)

	casual, err := s.LoadQueueEntries(ctx, "casual")
	require.NoError(t, err)
	require.Len(t, casual, 1)
	assert.Equal(t, "e2", casual[0].ID)
}

func TestStore_DeleteQueueEntryUnknownIDIsNoop(t *testing.T) {
	s := New(0)

	assert.NoError(t, s.DeleteQueueEntry(context.Background(), "missing"))
}

func TestStore_PartyLifecycle(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	p := persistence.PartyRecord{ID: "p1", LeaderID: "alice", Members: []string{"alice", "bob"}, MaxSize: 4}
	require.NoError(t, s.SaveParty(ctx, p))

	got, err := s.LoadParty(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Members, got.Members)

	require.NoError(t, s.DeleteParty(ctx, "p1"))

	got, err = s.LoadParty(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_LobbyLifecycle(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	l := persistence.LobbyRecord{ID: "l1", MatchID: "m1", State: "Forming", PlayerIDs: []string{"alice", "bob"}}
	require.NoError(t, s.SaveLobby(ctx, l))

	got, err := s.LoadLobby(ctx, "l1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, l.State, got.State)

	require.NoError(t, s.DeleteLobby(ctx, "l1"))

	got, err = s.LoadLobby(ctx, "l1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_MatchHistoryAppendsAndSnapshotsDefensively(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	require.NoError(t, s.SaveMatchResult(ctx, persistence.MatchHistoryRecord{Lobby: persistence.LobbyRecord{ID: "l1"}}))
	require.NoError(t, s.SaveMatchResult(ctx, persistence.MatchHistoryRecord{Lobby: persistence.LobbyRecord{ID: "l2"}}))

	history := s.MatchHistory()
	require.Len(t, history, 2)

	history[0].Lobby.ID = "mutated"
	assert.Equal(t, "l1", s.MatchHistory()[0].Lobby.ID, "MatchHistory must return a defensive copy")
}
