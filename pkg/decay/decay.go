// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package decay holds the pluggable time-based Rating transforms (spec
// §4.2 C3): inactivity decay and season resets. Ported from
// original_source/src/mmr/{decay,season}.rs. These run only when invoked by
// the embedding application; the package specifies behavior, not scheduling.
package decay

import (
	"time"

	"github.com/matchforge/engine/pkg/constants"
	"github.com/matchforge/engine/pkg/mathutil"
	"github.com/matchforge/engine/pkg/rating"
)

// Policy transforms a Rating based on elapsed inactivity.
type Policy interface {
	Apply(r rating.Rating, daysInactive float64) rating.Rating
}

// LinearDecay reduces rating linearly with days of inactivity, capped at
// maxDecay, and grows deviation back toward uncertainty.
type LinearDecay struct {
	PerDay   float64
	MaxDecay float64
}

func (l LinearDecay) Apply(r rating.Rating, daysInactive float64) rating.Rating {
	if daysInactive <= 0 {
		return r
	}

	decayAmount := mathutil.Min(l.PerDay*daysInactive, l.MaxDecay)

	return rating.Rating{
		Rating:     mathutil.Max(0, r.Rating-decayAmount),
		Deviation:  mathutil.Clamp(r.Deviation+0.5*daysInactive, constants.MinDeviation, constants.MaxDeviation),
		Volatility: r.Volatility,
	}
}

// NoDecay is the identity policy.
type NoDecay struct{}

func (NoDecay) Apply(r rating.Rating, _ float64) rating.Rating { return r }

// SeasonPolicy transforms a Rating at a season boundary.
type SeasonPolicy interface {
	Apply(r rating.Rating) rating.Rating
}

// SoftReset pulls rating pct of the way toward target and resets deviation
// to 200, preserving volatility.
type SoftReset struct {
	Target float64
	Pct    float64
}

func (s SoftReset) Apply(r rating.Rating) rating.Rating {
	return rating.Rating{
		Rating:     r.Rating + (s.Target-r.Rating)*s.Pct,
		Deviation:  200,
		Volatility: r.Volatility,
	}
}

// HardReset replaces the rating entirely: rating becomes Value, and
// deviation and volatility return to the engine's fresh-player defaults.
type HardReset struct {
	Value float64
}

func (h HardReset) Apply(rating.Rating) rating.Rating {
	return rating.Rating{
		Rating:     h.Value,
		Deviation:  constants.DefaultDeviation,
		Volatility: constants.DefaultVolatility,
	}
}

// Season is a named competitive period (spec §3).
type Season struct {
	ID    string
	Name  string
	Start time.Time
	End   time.Time
}

// IsActive reports whether now falls within [Start, End).
func (s Season) IsActive(now time.Time) bool {
	return !now.Before(s.Start) && now.Before(s.End)
}
