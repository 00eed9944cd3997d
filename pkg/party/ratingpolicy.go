// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package party

import (
	"gonum.org/v1/gonum/stat"

	"github.com/matchforge/engine/pkg/rating"
)

// RatingPolicy aggregates member ratings into a single party Rating
// (spec §4.7 C5).
type RatingPolicy interface {
	PartyRating(ratings []rating.Rating) rating.Rating
}

// AveragePolicy uses the mean rating and mean deviation across members,
// with volatility fixed at the engine default.
type AveragePolicy struct{}

func (AveragePolicy) PartyRating(ratings []rating.Rating) rating.Rating {
	if len(ratings) == 0 {
		return rating.Default()
	}

	values := make([]float64, len(ratings))
	deviations := make([]float64, len(ratings))
	for i, r := range ratings {
		values[i] = r.Rating
		deviations[i] = r.Deviation
	}

	return rating.Rating{
		Rating:     stat.Mean(values, nil),
		Deviation:  stat.Mean(deviations, nil),
		Volatility: 0.06,
	}
}

// MaxPolicy uses the highest-rated member's full triple.
type MaxPolicy struct{}

func (MaxPolicy) PartyRating(ratings []rating.Rating) rating.Rating {
	if len(ratings) == 0 {
		return rating.Default()
	}

	best := ratings[0]
	for _, r := range ratings[1:] {
		if r.Rating > best.Rating {
			best = r
		}
	}

	return best
}

// WeightedWithPenaltyPolicy averages ratings and adds a penalty to the
// party's composite for how spread out members' skill is:
// avg + gap*gapPenalty, where gap = max(r) - min(r).
type WeightedWithPenaltyPolicy struct {
	GapPenalty float64
}

func (w WeightedWithPenaltyPolicy) PartyRating(ratings []rating.Rating) rating.Rating {
	if len(ratings) == 0 {
		return rating.Default()
	}

	values := make([]float64, len(ratings))
	maxRating, minRating := ratings[0].Rating, ratings[0].Rating
	for i, r := range ratings {
		values[i] = r.Rating
		if r.Rating > maxRating {
			maxRating = r.Rating
		}
		if r.Rating < minRating {
			minRating = r.Rating
		}
	}

	gap := maxRating - minRating
	avg := stat.Mean(values, nil)

	return rating.Rating{
		Rating:     avg + gap*w.GapPenalty,
		Deviation:  200,
		Volatility: 0.06,
	}
}
