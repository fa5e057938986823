package models

import "time"

// RewardType classifies a granted reward.
type RewardType string

const (
	RewardTypeBadge   RewardType = "badge"
	RewardTypeSpecial RewardType = "special"
)

// UserReward is an append-only grant of a cosmetic reward. Grants are never
// overwritten; regranting is prevented by the reward marker, not by mutating
// existing rows.
type UserReward struct {
	ID           string     `json:"id" db:"id"`
	UserID       int        `json:"user_id" db:"user_id"`
	Type         RewardType `json:"type" db:"type"`
	Name         string     `json:"name" db:"name"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	RoundNumber  *int       `json:"round_number,omitempty" db:"round_number"`
	Payload      *string    `json:"payload,omitempty" db:"payload"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// RewardMarkerKind distinguishes the two grant stages that need a persisted
// idempotency marker.
type RewardMarkerKind string

const (
	RewardMarkerRound      RewardMarkerKind = "round"
	RewardMarkerTournament RewardMarkerKind = "tournament"
)

// RewardMarker records that rewards for a (tournament, round, kind) have been
// distributed. Inserted in the same transaction as the grants; a unique
// violation on insert means a previous tick already granted.
type RewardMarker struct {
	ID           int              `json:"id" db:"id"`
	TournamentID int              `json:"tournament_id" db:"tournament_id"`
	RoundNumber  int              `json:"round_number" db:"round_number"`
	Kind         RewardMarkerKind `json:"kind" db:"kind"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}
