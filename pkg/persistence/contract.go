// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package persistence defines the storage contract (spec §6, C14) shared by
// the rating, party, queue, and lobby subsystems. The core depends only on
// this contract; concrete backends live in the memory, redis, and postgres
// subpackages. Every method may fail with an *mmerrors.Error of kind
// KindPersistence.
package persistence

import (
	"context"

	"github.com/matchforge/engine/pkg/rating"
)

// QueueEntryRecord is the durable shape of a queue entry. It intentionally
// avoids importing pkg/queue so that persistence has no dependency on the
// components built atop it; pkg/queue converts to/from this shape.
type QueueEntryRecord struct {
	ID         string
	QueueName  string
	PlayerIDs  []string
	PartyID    string // empty means solo
	Rating     rating.Rating
	JoinedAt   int64 // unix nanoseconds, for sorted-set scoring
	Roles      []string
	Region     string
	HasRegion  bool
	Custom     map[string]interface{}
}

// PartyRecord is the durable shape of a party.
type PartyRecord struct {
	ID        string
	LeaderID  string
	Members   []string
	MaxSize   int
	CreatedAt int64
}

// LobbyRecord is the durable shape of a lobby.
type LobbyRecord struct {
	ID           string
	MatchID      string
	State        string
	Teams        [][]string // team index -> player IDs
	PlayerIDs    []string
	ReadyPlayers []string
	CreatedAt    int64
	Metadata     map[string]interface{}
}

// MatchHistoryRecord is an archived, closed lobby (spec §6 saveMatchResult).
type MatchHistoryRecord struct {
	Lobby      LobbyRecord
	ClosedAt   int64
	RatingDiff map[string]float64 // playerID -> rating delta applied at close
}

// Store is the persistence contract every component depends on (spec §6).
type Store interface {
	SavePlayerRating(ctx context.Context, playerID string, r rating.Rating) error
	LoadPlayerRating(ctx context.Context, playerID string) (*rating.Rating, error)

	// DeleteQueueEntry removes the entry identified by entryID (the entry's
	// own ID, not a member player ID — a deliberate deviation from spec §6's
	// literal deleteQueueEntry(playerId) signature; see DESIGN.md). Every
	// caller already holds the entry, so it always has entryID on hand, and
	// resolving by player ID instead would require an unindexed scan across
	// every queue since entries aren't stored with a global player index.
	SaveQueueEntry(ctx context.Context, entry QueueEntryRecord) error
	LoadQueueEntries(ctx context.Context, queueName string) ([]QueueEntryRecord, error)
	DeleteQueueEntry(ctx context.Context, entryID string) error

	SaveParty(ctx context.Context, p PartyRecord) error
	LoadParty(ctx context.Context, partyID string) (*PartyRecord, error)
	DeleteParty(ctx context.Context, partyID string) error

	SaveLobby(ctx context.Context, l LobbyRecord) error
	LoadLobby(ctx context.Context, lobbyID string) (*LobbyRecord, error)
	DeleteLobby(ctx context.Context, lobbyID string) error

	SaveMatchResult(ctx context.Context, record MatchHistoryRecord) error
}
