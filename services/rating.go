package services

import "math"

// Banded K-factors: a newer thumbnail's rating moves in wider steps so it
// converges quickly, a veteran's barely drifts.
const (
	kFactorNew     = 40 // fewer than 10 prior battles
	kFactorSettled = 20 // 10 to 19 prior battles
	kFactorVeteran = 10 // 20 or more prior battles

	ratingScale = 400.0
)

// KFactor returns the rating step size for a thumbnail with the given number
// of prior battles.
func KFactor(priorBattles int) int {
	switch {
	case priorBattles < 10:
		return kFactorNew
	case priorBattles < 20:
		return kFactorSettled
	default:
		return kFactorVeteran
	}
}

// ExpectedScore returns the logistic win probability of a rating against an
// opponent rating.
func ExpectedScore(rating, opponentRating int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(opponentRating-rating)/ratingScale))
}

// UpdatedRatings computes both new ratings for a decided battle. Each side
// uses its own K band; winner actual score is 1, loser 0, and steps are
// rounded to the nearest integer.
func UpdatedRatings(winnerRating, winnerPriorBattles, loserRating, loserPriorBattles int) (newWinner, newLoser int) {
	winnerExpected := ExpectedScore(winnerRating, loserRating)
	loserExpected := ExpectedScore(loserRating, winnerRating)

	winnerK := float64(KFactor(winnerPriorBattles))
	loserK := float64(KFactor(loserPriorBattles))

	newWinner = winnerRating + int(math.Round(winnerK*(1.0-winnerExpected)))
	newLoser = loserRating + int(math.Round(loserK*(0.0-loserExpected)))
	return newWinner, newLoser
}
