// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package decay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/matchforge/engine/pkg/rating"
)

func TestLinearDecay_NoOpWhenNotInactive(t *testing.T) {
	policy := LinearDecay{PerDay: 5, MaxDecay: 200}
	r := rating.Rating{Rating: 1500, Deviation: 100, Volatility: 0.06}

	result := policy.Apply(r, 0)

	assert.Equal(t, r, result)
}

func TestLinearDecay_CapsAtMaxDecay(t *testing.T) {
	policy := LinearDecay{PerDay: 10, MaxDecay: 50}
	r := rating.Rating{Rating: 1500, Deviation: 100, Volatility: 0.06}

	result := policy.Apply(r, 100) // 10*100 = 1000, way over the 50 cap

	assert.Equal(t, 1450.0, result.Rating)
}

func TestLinearDecay_NeverGoesBelowZero(t *testing.T) {
	policy := LinearDecay{PerDay: 100, MaxDecay: 10000}
	r := rating.Rating{Rating: 50, Deviation: 100, Volatility: 0.06}

	result := policy.Apply(r, 10)

	assert.Equal(t, 0.0, result.Rating)
}

func TestNoDecay_Identity(t *testing.T) {
	r := rating.Rating{Rating: 1234, Deviation: 80, Volatility: 0.1}
	assert.Equal(t, r, NoDecay{}.Apply(r, 30))
}

func TestSoftReset(t *testing.T) {
	policy := SoftReset{Target: 1500, Pct: 0.5}
	r := rating.Rating{Rating: 2000, Deviation: 50, Volatility: 0.08}

	result := policy.Apply(r)

	assert.Equal(t, 1750.0, result.Rating)
	assert.Equal(t, 200.0, result.Deviation)
	assert.Equal(t, 0.08, result.Volatility)
}

func TestHardReset(t *testing.T) {
	result := HardReset{Value: 1500}.Apply(rating.Rating{Rating: 2500, Deviation: 50, Volatility: 0.02})

	assert.Equal(t, rating.Rating{Rating: 1500, Deviation: 350, Volatility: 0.06}, result)
}

func TestSeason_IsActive(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	season := Season{
		ID:    "s1",
		Name:  "Season One",
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, season.IsActive(now))
	assert.False(t, season.IsActive(season.End))
	assert.True(t, season.IsActive(season.Start))
}
