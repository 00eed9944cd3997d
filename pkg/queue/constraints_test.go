// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/matchforge/engine/pkg/rating"
)

func regionPtr(s string) *string { return &s }

func entryWithRegion(region string) Entry {
	return Entry{
		ID:        "e-" + region,
		PlayerIDs: []string{"p-" + region},
		Rating:    rating.Default(),
		JoinedAt:  time.Now(),
		Metadata:  EntryMetadata{Region: regionPtr(region)},
	}
}

func TestMatchConstraints_CanMatch_SameRegionCaseInsensitive(t *testing.T) {
	c := Strict()
	now := time.Now()

	assert.True(t, c.CanMatch(entryWithRegion("US"), entryWithRegion("us"), now), "case should not matter")
	assert.True(t, c.CanMatch(entryWithRegion("de"), entryWithRegion("DE"), now))
}

func TestMatchConstraints_CanMatch_DifferentRegionsRejected(t *testing.T) {
	c := Strict()
	now := time.Now()

	assert.False(t, c.CanMatch(entryWithRegion("US"), entryWithRegion("DE"), now))
}

func TestMatchConstraints_CanMatch_UnrecognizedRegionFallsBackToCaseInsensitiveCompare(t *testing.T) {
	c := Strict()
	now := time.Now()

	assert.True(t, c.CanMatch(entryWithRegion("asia-east-1"), entryWithRegion("ASIA-EAST-1"), now))
	assert.False(t, c.CanMatch(entryWithRegion("asia-east-1"), entryWithRegion("us-west-1"), now))
}

func TestMatchConstraints_CanMatch_BothRegionsAbsentTreatedAsEqual(t *testing.T) {
	c := Strict()
	now := time.Now()

	a := Entry{ID: "a", PlayerIDs: []string{"pa"}, Rating: rating.Default(), JoinedAt: now}
	b := Entry{ID: "b", PlayerIDs: []string{"pb"}, Rating: rating.Default(), JoinedAt: now}

	assert.True(t, c.CanMatch(a, b, now))
}

func TestMatchConstraints_CanMatch_OneRegionAbsentRejected(t *testing.T) {
	c := Strict()
	now := time.Now()

	a := Entry{ID: "a", PlayerIDs: []string{"pa"}, Rating: rating.Default(), JoinedAt: now}

	assert.False(t, c.CanMatch(a, entryWithRegion("US"), now))
}

func TestMatchConstraints_SatisfiesRoles(t *testing.T) {
	c := MatchConstraints{RoleRequirements: []RoleRequirement{{Role: "tank", Count: 1}, {Role: "healer", Count: 1}}}

	entries := []Entry{
		{Metadata: EntryMetadata{Roles: []string{"tank"}}},
		{Metadata: EntryMetadata{Roles: []string{"dps"}}},
	}
	assert.False(t, c.SatisfiesRoles(entries), "missing healer")

	entries = append(entries, Entry{Metadata: EntryMetadata{Roles: []string{"healer"}}})
	assert.True(t, c.SatisfiesRoles(entries))
}
