package models

import "time"

// DefaultEloRating is assigned to every newly registered thumbnail.
const DefaultEloRating = 1200

// Thumbnail is a submitted entry competing in a tournament. Rating and the
// battle counters are mutated exclusively by the battle resolver.
type Thumbnail struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	CreatorID    int       `json:"creator_id" db:"creator_id"`
	Title        string    `json:"title" db:"title"`
	ImageKey     *string   `json:"-" db:"image_key"`
	ImageURL     *string   `json:"image_url,omitempty" db:"-"`
	EloRating    int       `json:"elo_rating" db:"elo_rating"`
	BattleCount  int       `json:"battle_count" db:"battle_count"`
	WinCount     int       `json:"win_count" db:"win_count"`
	LossCount    int       `json:"loss_count" db:"loss_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
