// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package party implements C4-C6: the Party value type, pluggable
// party-rating aggregation policies, and the PartyManager lifecycle.
// Ported from original_source/src/party/{party,manager,mmr_strategy}.rs into
// the teacher's manager-plus-reverse-index idiom
// (pkg/matchmaker/defaultmatchmaker uses the same shape for ticket indices).
package party

import (
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/mitchellh/copystructure"

	"github.com/matchforge/engine/pkg/common"
)

// Party is a persistent, cross-queue group of players that queues as a
// unit (spec §3). It is mutated only through PartyManager.
type Party struct {
	ID        string
	LeaderID  string
	Members   []string // ordered, unique
	MaxSize   int
	CreatedAt time.Time
}

// New constructs a Party with leaderID as its sole initial member.
func New(leaderID string, maxSize int) Party {
	return Party{
		ID:        common.GenerateUUID(),
		LeaderID:  leaderID,
		Members:   []string{leaderID},
		MaxSize:   maxSize,
		CreatedAt: time.Now(),
	}
}

// Size returns the current member count.
func (p Party) Size() int { return len(p.Members) }

// IsFull reports whether the party has reached MaxSize.
func (p Party) IsFull() bool { return p.Size() >= p.MaxSize }

// HasMember reports whether playerID is a current member.
func (p Party) HasMember(playerID string) bool { return pie.Contains(p.Members, playerID) }

// IsLeader reports whether playerID is the party leader.
func (p Party) IsLeader(playerID string) bool { return p.LeaderID == playerID }

// Snapshot returns an independent copy of the member list, for callers (like
// QueueEntry construction) that must freeze the party's composition at a
// point in time: later additions/removals on the live Party must never be
// visible through an already-queued entry.
func (p Party) Snapshot() []string {
	copied, err := copystructure.Copy(p.Members)
	if err != nil {
		// copystructure only fails on unsupported types; []string is always
		// supported, so this is unreachable in practice.
		members := make([]string, len(p.Members))
		copy(members, p.Members)

		return members
	}

	return copied.([]string)
}
