// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package queue

import (
	"sort"
	"time"

	"gopkg.in/typ.v4/slices"
	"gopkg.in/typ.v4/sync2"

	"github.com/matchforge/engine/pkg/common"
	"github.com/matchforge/engine/pkg/constants"
)

// candidatePool reuses the scratch []Entry built while probing each seed in
// assembleOne: most seeds are rejected and their candidate set thrown away,
// so pooling avoids an allocation per rejected seed per tick.
var candidatePool = &sync2.Pool[[]Entry]{
	New: func() []Entry { return make([]Entry, 0, 8) },
}

// MatchResult is the ephemeral output of a successful assembly: a disjoint
// set of entries together with a parallel team assignment (entry index ->
// team index).
type MatchResult struct {
	MatchID         string
	Entries         []Entry
	TeamAssignments []int
}

// SkipReason records why a candidate seed could not be turned into a match
// this tick. Purely observational: it never changes which matches are
// produced (spec §4.4 is unaffected), it only feeds metrics.
type SkipReason struct {
	SeedEntryID string
	Reason      string
}

// Matcher is the pure (entries, format, constraints) -> disjoint match sets
// function (C9). It never fails: an unmatchable population simply yields an
// empty result slice.
type Matcher struct{}

// FindMatches repeatedly assembles matches from entries until no further
// seed can be completed, returning the matches found plus at most one
// SkipReason, which explains why the longest-waiting leftover entry could
// not be matched. Entries not consumed by any result remain eligible for a
// future call.
func (Matcher) FindMatches(entries []Entry, format MatchFormat, constraints MatchConstraints, now time.Time) ([]MatchResult, []SkipReason) {
	remaining := sortByJoinOrder(entries)

	var results []MatchResult
	var skips []SkipReason

	for {
		result, skip, ok := assembleOne(remaining, format, constraints, now)
		if !ok {
			if skip.Reason != "" {
				skips = append(skips, skip)
			}

			break
		}

		results = append(results, result)
		remaining = removeEntries(remaining, result.Entries)
	}

	return results, skips
}

func sortByJoinOrder(entries []Entry) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.JoinedAt.Equal(b.JoinedAt) {
			return a.ID < b.ID // tie-break: lower entry id wins
		}

		return a.JoinedAt.Before(b.JoinedAt)
	})

	return sorted
}

// assembleOne tries every remaining entry as a seed, oldest first, and
// returns the first complete, constraint-satisfying candidate set it can
// build. ok is false once no seed in remaining can produce a match.
func assembleOne(remaining []Entry, format MatchFormat, constraints MatchConstraints, now time.Time) (MatchResult, SkipReason, bool) {
	if len(remaining) == 0 {
		return MatchResult{}, SkipReason{}, false
	}

	queuedPlayers := 0
	for _, e := range remaining {
		queuedPlayers += e.PlayerCount()
	}

	if queuedPlayers < format.TotalPlayers {
		return MatchResult{}, SkipReason{SeedEntryID: remaining[0].ID, Reason: constants.ReasonNotEnoughEntries}, false
	}

	// firstSeedReason records the specific cause the very first seed (the
	// one FindMatches reports SkipReason against, since remaining[0] is the
	// longest-waiting entry) failed to complete a match, so a caller sees
	// why rather than a single catch-all code.
	var firstSeedReason string

	for seedIdx, seed := range remaining {
		selected := append(candidatePool.Get()[:0], seed)
		playerCount := seed.PlayerCount()
		rejectReason := ""

		for i, candidate := range remaining {
			if i == seedIdx || playerCount >= format.TotalPlayers {
				continue
			}

			if playerCount+candidate.PlayerCount() > format.TotalPlayers {
				continue
			}

			if reason := incompatibilityWithAll(candidate, selected, constraints, now); reason != "" {
				if rejectReason == "" {
					rejectReason = reason
				}

				continue
			}

			selected = append(selected, candidate)
			playerCount += candidate.PlayerCount()
		}

		if playerCount != format.TotalPlayers {
			if seedIdx == 0 {
				firstSeedReason = orDefault(rejectReason, constants.ReasonNoCompatibleEntries)
			}

			candidatePool.Put(selected)

			continue
		}

		if !constraints.SatisfiesRoles(selected) {
			if seedIdx == 0 {
				firstSeedReason = constants.ReasonRoleRequirementsUnmet
			}

			candidatePool.Put(selected)

			continue
		}

		assignments, ok := assignTeams(selected, format)
		if !ok {
			if seedIdx == 0 {
				firstSeedReason = constants.ReasonTeamsCouldNotBeFilled
			}

			candidatePool.Put(selected)

			continue
		}

		entries := make([]Entry, len(selected))
		copy(entries, selected)
		candidatePool.Put(selected)

		return MatchResult{
			MatchID:         common.GenerateUUID(),
			Entries:         entries,
			TeamAssignments: assignments,
		}, SkipReason{}, true
	}

	return MatchResult{}, SkipReason{SeedEntryID: remaining[0].ID, Reason: orDefault(firstSeedReason, constants.ReasonNoCompatibleEntries)}, false
}

func orDefault(reason, fallback string) string {
	if reason == "" {
		return fallback
	}

	return reason
}

// incompatibilityWithAll returns the first constants.Reason* code that rules
// candidate out against any already-selected entry, or "" if candidate is
// compatible with all of them.
func incompatibilityWithAll(candidate Entry, selected []Entry, constraints MatchConstraints, now time.Time) string {
	for _, s := range selected {
		if reason := constraints.IncompatibilityReason(s, candidate, now); reason != "" {
			return reason
		}
	}

	return ""
}

// assignTeams places entries into the lowest-indexed team with remaining
// capacity, in the order they were admitted. A multi-player entry that
// can't fit entirely inside one team rejects the whole candidate set —
// parties never split across teams.
func assignTeams(entries []Entry, format MatchFormat) ([]int, bool) {
	fill := make([]int, len(format.TeamSizes))
	assignments := make([]int, 0, len(entries))

	for _, e := range entries {
		placed := false

		for team, size := range format.TeamSizes {
			if fill[team]+e.PlayerCount() <= size {
				fill[team] += e.PlayerCount()
				assignments = append(assignments, team)
				placed = true

				break
			}
		}

		if !placed {
			return nil, false
		}
	}

	return assignments, true
}

func removeEntries(from []Entry, used []Entry) []Entry {
	usedIDs := make(map[string]struct{}, len(used))
	for _, e := range used {
		usedIDs[e.ID] = struct{}{}
	}

	return slices.Filter(from, func(e Entry) bool {
		_, ok := usedIDs[e.ID]

		return !ok
	})
}
