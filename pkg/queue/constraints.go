// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package queue

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/biter777/countries"

	"github.com/matchforge/engine/pkg/constants"
)

// RoleRequirement names a role and how many entries must supply it for a
// candidate match to be accepted.
type RoleRequirement struct {
	Role  string
	Count int
}

// MatchConstraints is the policy object (C8) governing which entries may
// co-match: rating window, region gate, role requirements, and the rate at
// which the rating window relaxes with wait time.
type MatchConstraints struct {
	MaxRatingDelta     float64
	SameRegionRequired bool
	RoleRequirements   []RoleRequirement
	MaxWaitTimeSeconds int64
	ExpansionRate      float64
}

// Permissive returns constraints loose enough to match almost anything,
// useful as a default for tests and casual queues.
func Permissive() MatchConstraints {
	return MatchConstraints{
		MaxRatingDelta:     500,
		SameRegionRequired: false,
		MaxWaitTimeSeconds: 60,
		ExpansionRate:      10,
	}
}

// Strict returns a tight ranked-queue configuration.
func Strict() MatchConstraints {
	return MatchConstraints{
		MaxRatingDelta:     100,
		SameRegionRequired: true,
		MaxWaitTimeSeconds: 300,
		ExpansionRate:      5,
	}
}

// EffectiveRatingDelta is maxRatingDelta widened by how long entry has
// waited: maxRatingDelta + waitSeconds(entry) * expansionRate.
func (c MatchConstraints) EffectiveRatingDelta(entry Entry, now time.Time) float64 {
	waitSeconds := float64(entry.WaitSeconds(now))

	return c.MaxRatingDelta + waitSeconds*c.ExpansionRate
}

// CanMatch reports whether a and b satisfy the pairwise compatibility rule
// (spec §4.4): the looser of the two wait-adjusted rating windows, and,
// if required, equal regions (both absent counts as equal).
func (c MatchConstraints) CanMatch(a, b Entry, now time.Time) bool {
	return c.IncompatibilityReason(a, b, now) == ""
}

// IncompatibilityReason reports why a and b may not co-match, as one of the
// constants.Reason* codes, or "" if they're compatible. This is the same
// pairwise rule CanMatch checks, broken out by cause so the Matcher can
// surface a specific constants.Reason* skip code (SPEC_FULL.md
// "Supplemented features") instead of a single pass/fail bit.
func (c MatchConstraints) IncompatibilityReason(a, b Entry, now time.Time) string {
	maxDelta := math.Max(c.EffectiveRatingDelta(a, now), c.EffectiveRatingDelta(b, now))
	ratingDiff := math.Abs(a.Rating.Rating - b.Rating.Rating)

	if ratingDiff > maxDelta {
		return constants.ReasonRatingWindowExceeded
	}

	if c.SameRegionRequired {
		switch {
		case a.Metadata.HasRegion() && b.Metadata.HasRegion():
			if normalizeRegion(*a.Metadata.Region) != normalizeRegion(*b.Metadata.Region) {
				return constants.ReasonRegionMismatch
			}
		case !a.Metadata.HasRegion() && !b.Metadata.HasRegion():
			// both absent: treated as equal
		default:
			return constants.ReasonRegionMismatch
		}
	}

	return ""
}

// normalizeRegion resolves region to its ISO-3166 alpha-2 code so that
// "US", "us", and "USA" all compare equal. Region strings that aren't a
// recognized country (server/edge names like "asia-east-1") fall back to a
// case-insensitive comparison rather than being rejected outright.
func normalizeRegion(region string) string {
	if code := countries.ByName(region); code != countries.Unknown {
		return code.Alpha2()
	}

	return strings.ToUpper(region)
}

// SatisfiesRoles reports whether the multiset union of entries' roles
// includes at least Count occurrences of Role, for every requirement. An
// empty requirement list is trivially satisfied.
func (c MatchConstraints) SatisfiesRoles(entries []Entry) bool {
	if len(c.RoleRequirements) == 0 {
		return true
	}

	counts := make(map[string]int)
	for _, e := range entries {
		for _, role := range e.Metadata.Roles {
			counts[role]++
		}
	}

	for _, req := range c.RoleRequirements {
		if counts[req.Role] < req.Count {
			return false
		}
	}

	return true
}

// MatchFormat describes the shape of a match: how many teams, and how many
// players each team holds.
type MatchFormat struct {
	Name       string
	TeamSizes  []int
	TotalPlayers int
}

// NewMatchFormat derives TotalPlayers from teamSizes.
func NewMatchFormat(name string, teamSizes []int) MatchFormat {
	total := 0
	for _, size := range teamSizes {
		total += size
	}

	return MatchFormat{Name: name, TeamSizes: teamSizes, TotalPlayers: total}
}

// OneVOne is the 1v1 format.
func OneVOne() MatchFormat { return NewMatchFormat("1v1", []int{1, 1}) }

// TeamVTeam builds a symmetric N-v-N format.
func TeamVTeam(teamSize int) MatchFormat {
	n := strconv.Itoa(teamSize)

	return NewMatchFormat(n+"v"+n, []int{teamSize, teamSize})
}
