package models

import "time"

// RoundReward is the validated reward configuration attached to a round at
// tournament creation time.
type RoundReward struct {
	Points         int      `json:"points"`
	Badges         []string `json:"badges,omitempty"`
	SpecialRewards []string `json:"special_rewards,omitempty"`
}

// Round is one elimination stage of a tournament.
type Round struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Number       int         `json:"number" db:"number"`
	StartDate    time.Time   `json:"start_date" db:"start_date"`
	EndDate      time.Time   `json:"end_date" db:"end_date"`
	Theme        *string     `json:"theme,omitempty" db:"theme"`
	Reward       RoundReward `json:"reward" db:"-"`
}
