// Package dupr updates a player's skill rating after a completed match. It
// only looks at final scores and ratings, never the point-by-point log.
package dupr

import (
	"math"
	"pickleball-sim/internal/constants"
	"pickleball-sim/internal/domain"
)

func Clamp(rating float64) float64 {
	return math.Max(constants.MinRating, math.Min(constants.MaxRating, rating))
}

// ExpectedPerformance is the logistic expectation from the rating gap.
func ExpectedPerformance(playerRating, opponentRating float64) float64 {
	return 1 / (1 + math.Pow(10, (opponentRating-playerRating)/constants.ExpectedScale))
}

// ActualPerformance maps the point margin onto [0, 1]; 0.5 is an even game.
func ActualPerformance(playerPoints, opponentPoints, pointsToWin int) float64 {
	if pointsToWin <= 0 {
		pointsToWin = 1
	}
	margin := float64(playerPoints-opponentPoints) / float64(pointsToWin)
	return math.Max(0, math.Min(1, 0.5+0.5*margin))
}

func RatingChange(playerRating, opponentRating float64, playerPoints, opponentPoints, pointsToWin int, kFactor float64) float64 {
	expected := ExpectedPerformance(playerRating, opponentRating)
	actual := ActualPerformance(playerPoints, opponentPoints, pointsToWin)
	delta := kFactor * (actual - expected) / constants.DeltaDivisor

	if math.Abs(playerRating-opponentRating) > constants.LopsidedGapThreshold {
		delta *= constants.LopsidedDiscount
	}

	avg := (playerRating + opponentRating) / 2
	if avg > constants.HighLevelThreshold {
		damping := 1 - (avg-constants.HighLevelThreshold)*constants.HighLevelDamping
		delta *= math.Max(constants.HighLevelFloor, damping)
	}
	return delta
}

// MatchRatingChange averages the per-game change. No games, no change.
func MatchRatingChange(playerRating, opponentRating float64, games []domain.GameScore, pointsToWin int, kFactor float64) float64 {
	if len(games) == 0 {
		return 0.0
	}
	total := 0.0
	for _, g := range games {
		total += RatingChange(playerRating, opponentRating, g.Player, g.Opponent, pointsToWin, kFactor)
	}
	return total / float64(len(games))
}

func KFactor(reliability float64) float64 {
	switch {
	case reliability < constants.ReliabilityNewBelow:
		return constants.KFactorNew
	case reliability < constants.ReliabilityDevelopingBelow:
		return constants.KFactorDeveloping
	default:
		return constants.KFactorEstablished
	}
}

// ShouldAutoUnrate is true only when the gap strictly exceeds MaxRatedGap.
func ShouldAutoUnrate(playerRating, opponentRating float64) bool {
	return math.Abs(playerRating-opponentRating) > constants.MaxRatedGap
}
