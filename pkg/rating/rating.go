// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package rating holds the Rating value type, match Outcome, and the
// pluggable RatingAlgorithm contract (spec §4.1). Ported from
// original_source/src/mmr/{rating,algorithm}.rs into the teacher's idiom:
// plain structs, pluggable behavior via interfaces, never mutated in place.
package rating

import (
	"github.com/matchforge/engine/pkg/constants"
	"github.com/matchforge/engine/pkg/mathutil"
)

// Rating is the immutable skill triple (spec §3). New values always replace
// old ones; nothing mutates a Rating in place.
type Rating struct {
	Rating     float64
	Deviation  float64
	Volatility float64
}

// Default returns the default beginner Rating (spec §3).
func Default() Rating {
	return Rating{
		Rating:     constants.DefaultRating,
		Deviation:  constants.DefaultDeviation,
		Volatility: constants.DefaultVolatility,
	}
}

// Clamped enforces the Rating invariants from spec §3: deviation in
// [50, 350], volatility >= 0, rating >= 0.
func (r Rating) Clamped() Rating {
	return Rating{
		Rating:     mathutil.Max(0, r.Rating),
		Deviation:  mathutil.Clamp(r.Deviation, constants.MinDeviation, constants.MaxDeviation),
		Volatility: mathutil.Max(0, r.Volatility),
	}
}

// ConservativeEstimate is rating - 2*deviation: a lower bound on true skill.
func (r Rating) ConservativeEstimate() float64 {
	return r.Rating - 2*r.Deviation
}

// Outcome is the discriminated result of a match from one player's
// perspective.
type Outcome int

const (
	Loss Outcome = iota
	Draw
	Win
)

// Score returns the numeric outcome: 1 for Win, 0.5 for Draw, 0 for Loss.
func (o Outcome) Score() float64 {
	switch o {
	case Win:
		return 1
	case Draw:
		return 0.5
	default:
		return 0
	}
}

// Opposite returns the outcome from the other side's perspective: Win<->Loss,
// Draw stays Draw. LobbyManager does not call it: it derives each team's
// outcome from that team's own players.
func (o Outcome) Opposite() Outcome {
	switch o {
	case Win:
		return Loss
	case Loss:
		return Win
	default:
		return Draw
	}
}
