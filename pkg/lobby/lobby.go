// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package lobby implements C11-C12: the Lobby value type and state machine,
// and the LobbyManager that drives it through readiness, dispatch, close,
// and the rating-update protocol. Ported from
// original_source/src/lobby/{lobby,state}.rs into the teacher's idiom.
package lobby

import (
	"time"

	"github.com/matchforge/engine/pkg/common"
	"github.com/matchforge/engine/pkg/queue"
)

// State is a node in the lobby lifecycle DAG (spec §4.3).
type State int

const (
	Forming State = iota
	WaitingForReady
	Ready
	Dispatched
	Closed
)

func (s State) String() string {
	switch s {
	case Forming:
		return "Forming"
	case WaitingForReady:
		return "WaitingForReady"
	case Ready:
		return "Ready"
	case Dispatched:
		return "Dispatched"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// CanTransitionTo reports whether s -> next is an allowed DAG edge.
// Any state may transition to Closed (cancellation).
func (s State) CanTransitionTo(next State) bool {
	if next == Closed {
		return true
	}

	switch s {
	case Forming:
		return next == WaitingForReady
	case WaitingForReady:
		return next == Ready
	case Ready:
		return next == Dispatched
	default:
		return false
	}
}

// Metadata carries dispatch/game-mode bookkeeping alongside a Lobby.
type Metadata struct {
	QueueName string
	ServerID  string
	Custom    map[string]interface{}
}

// Lobby is a matched set of players grouped into teams, tracked through its
// readiness and dispatch lifecycle (spec §3, C11).
type Lobby struct {
	ID           string
	MatchID      string
	State        State
	Teams        [][]string // team index -> player IDs
	PlayerIDs    []string
	ReadyPlayers map[string]struct{}
	CreatedAt    time.Time
	Metadata     Metadata
}

// FromMatchResult assembles a Forming Lobby from a Matcher result, deriving
// teams from the result's team assignments (spec §4.6 createFromMatch).
func FromMatchResult(result queue.MatchResult, format queue.MatchFormat, metadata Metadata) Lobby {
	teams := make([][]string, len(format.TeamSizes))
	for i := range teams {
		teams[i] = []string{}
	}

	var playerIDs []string
	for i, entry := range result.Entries {
		team := result.TeamAssignments[i]
		teams[team] = append(teams[team], entry.PlayerIDs...)
		playerIDs = append(playerIDs, entry.PlayerIDs...)
	}

	return Lobby{
		ID:           common.GenerateULID(time.Now()),
		MatchID:      result.MatchID,
		State:        Forming,
		Teams:        teams,
		PlayerIDs:    playerIDs,
		ReadyPlayers: make(map[string]struct{}),
		CreatedAt:    time.Now(),
		Metadata:     metadata,
	}
}

// HasPlayer reports whether playerID is part of this lobby.
func (l Lobby) HasPlayer(playerID string) bool {
	return common.Contains(l.PlayerIDs, playerID)
}

// AllReady reports whether every player has signaled ready.
func (l Lobby) AllReady() bool {
	return len(l.ReadyPlayers) == len(l.PlayerIDs)
}

// TeamOf returns the team index holding playerID, or -1 if not found.
func (l Lobby) TeamOf(playerID string) int {
	for i, team := range l.Teams {
		if common.Contains(team, playerID) {
			return i
		}
	}

	return -1
}
