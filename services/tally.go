package services

import "github.com/framefight/arena/models"

// VoteCounts is the two-way tally of one battle's votes.
type VoteCounts struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Leader returns the winning side, or ok=false when the counts are equal
// (including the zero-zero case).
func (c VoteCounts) Leader() (side models.BattleSide, ok bool) {
	switch {
	case c.A > c.B:
		return models.BattleSideA, true
	case c.B > c.A:
		return models.BattleSideB, true
	default:
		return "", false
	}
}

// TallyVotes counts a battle's votes per side. Votes carrying anything other
// than a valid side are ignored; the database constraint makes that
// unreachable in practice.
func TallyVotes(votes []*models.Vote) VoteCounts {
	var counts VoteCounts
	for _, v := range votes {
		switch v.Side {
		case models.BattleSideA:
			counts.A++
		case models.BattleSideB:
			counts.B++
		}
	}
	return counts
}
