// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package queue implements C7-C10: queue entries, match constraints, the
// greedy matcher, and the queue manager. Ported from
// original_source/src/queue/{entry,constraints,matcher,manager}.rs into the
// teacher's scope-threaded, reverse-indexed manager idiom.
package queue

import (
	"time"

	"github.com/matchforge/engine/pkg/rating"
)

// EntryMetadata carries the optional matching hints attached to an entry.
// Region uses a pointer so "no region" (nil) is distinct from "region is the
// empty string" (spec §9, tagged alternatives over sentinel values).
type EntryMetadata struct {
	Roles  []string
	Region *string
	Custom map[string]interface{}
}

// HasRegion reports whether Region is present.
func (m EntryMetadata) HasRegion() bool { return m.Region != nil }

// Entry is an immutable row describing a waiting solo player or party
// (spec §3, C7). It is constructed by Manager.JoinSolo/JoinParty, read by
// the Matcher, and destroyed on leave or match consumption.
type Entry struct {
	ID        string
	QueueName string
	PlayerIDs []string // non-empty, unique
	PartyID   string   // empty means solo
	Rating    rating.Rating
	JoinedAt  time.Time
	Metadata  EntryMetadata
}

// IsSolo reports whether this entry represents a single unpartied player.
func (e Entry) IsSolo() bool { return e.PartyID == "" && len(e.PlayerIDs) == 1 }

// PlayerCount returns the number of players this entry carries into a match.
func (e Entry) PlayerCount() int { return len(e.PlayerIDs) }

// WaitSeconds returns the whole seconds e has spent in queue, measured from
// now.
func (e Entry) WaitSeconds(now time.Time) int64 {
	return int64(now.Sub(e.JoinedAt).Seconds())
}
