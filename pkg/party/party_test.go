// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package party

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParty_NewStartsWithLeaderAsSoleMember(t *testing.T) {
	p := New("leader-1", 4)

	assert.Equal(t, 1, p.Size())
	assert.True(t, p.HasMember("leader-1"))
	assert.True(t, p.IsLeader("leader-1"))
	assert.False(t, p.IsFull())
}

func TestParty_IsFull(t *testing.T) {
	p := New("leader-1", 1)
	assert.True(t, p.IsFull())
}

func TestParty_SnapshotIsIndependentCopy(t *testing.T) {
	p := New("leader-1", 4)
	snap := p.Snapshot()
	snap[0] = "tampered"

	assert.Equal(t, "leader-1", p.Members[0])
}
