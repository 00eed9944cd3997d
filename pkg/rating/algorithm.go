// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package rating

import (
	"math"

	"github.com/matchforge/engine/pkg/constants"
	"github.com/matchforge/engine/pkg/mathutil"
)

// Algorithm transforms one player's rating given a single opponent rating
// and outcome (spec §4.1 C2). Both supplied implementations are pure and
// cannot fail; callers validate input ranges.
type Algorithm interface {
	// NewRating computes the player's post-match rating.
	NewRating(playerRating, opponentRating Rating, outcome Outcome) Rating

	// Name identifies the algorithm for metrics/logging.
	Name() string
}

// Elo implements the classic Elo rating system with a configurable
// K-factor. Deviation contracts slightly on every update as a minor
// confidence gain; volatility is untouched.
type Elo struct {
	KFactor float64
}

// NewElo builds an Elo algorithm with the default K-factor of 32 (spec §4.1).
func NewElo() Elo {
	return Elo{KFactor: 32}
}

func (e Elo) expected(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

func (e Elo) NewRating(playerRating, opponentRating Rating, outcome Outcome) Rating {
	expected := e.expected(playerRating.Rating, opponentRating.Rating)
	actual := outcome.Score()

	newRating := playerRating.Rating + e.KFactor*(actual-expected)

	return Rating{
		Rating:     mathutil.Max(0, newRating),
		Deviation:  mathutil.Clamp(playerRating.Deviation*0.99, constants.MinDeviation, constants.MaxDeviation),
		Volatility: playerRating.Volatility,
	}.Clamped()
}

func (e Elo) Name() string { return "elo" }

// Glicko2 implements the simplified Glicko-2 update from spec §4.1: it uses
// deviation to weight expected score but omits the tau-based volatility
// solver (spec §9 open question 4).
type Glicko2 struct{}

// NewGlicko2 builds the simplified Glicko-2 algorithm.
func NewGlicko2() Glicko2 { return Glicko2{} }

// g dampens the rating difference by the opponent's deviation: more
// uncertain opponents contribute less to the expected-score calculation.
func (g Glicko2) g(deviation float64) float64 {
	q := (3 * deviation * deviation) / (math.Pi * math.Pi)
	return 1 / math.Sqrt(1+q)
}

func (g Glicko2) expected(r, opponentRating, opponentDeviation float64) float64 {
	gVal := g.g(opponentDeviation)
	return 1 / (1 + math.Exp(-gVal*(r-opponentRating)/400))
}

func (g Glicko2) NewRating(playerRating, opponentRating Rating, outcome Outcome) Rating {
	gVal := g.g(opponentRating.Deviation)
	expected := g.expected(playerRating.Rating, opponentRating.Rating, opponentRating.Deviation)
	actual := outcome.Score()

	variance := 1 / (gVal * gVal * expected * (1 - expected))
	delta := variance * gVal * (actual - expected)

	newRating := playerRating.Rating + delta
	newDeviation := math.Sqrt(playerRating.Deviation*playerRating.Deviation + variance)

	return Rating{
		Rating:     mathutil.Max(0, newRating),
		Deviation:  mathutil.Min(newDeviation, constants.MaxDeviation),
		Volatility: playerRating.Volatility,
	}.Clamped()
}

func (g Glicko2) Name() string { return "glicko2" }
