package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusPending   TournamentStatus = "pending"
	TournamentStatusActive    TournamentStatus = "active"
	TournamentStatusConcluded TournamentStatus = "concluded"
	TournamentStatusCancelled TournamentStatus = "cancelled"
)

// Tournament is one elimination bracket. Rounds are owned by the tournament
// and immutable once their start date has passed.
type Tournament struct {
	ID                   int              `json:"id" db:"id"`
	Title                string           `json:"title" db:"title"`
	Category             *string          `json:"category,omitempty" db:"category"`
	CreatorID            int              `json:"creator_id" db:"creator_id"`
	RegistrationDeadline time.Time        `json:"registration_deadline" db:"registration_deadline"`
	StartDate            time.Time        `json:"start_date" db:"start_date"`
	EndDate              time.Time        `json:"end_date" db:"end_date"`
	Status               TournamentStatus `json:"status" db:"status"`
	WinnerThumbnailID    *int             `json:"winner_thumbnail_id,omitempty" db:"winner_thumbnail_id"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`

	// Loaded on demand, not mapped directly.
	Rounds     []Round     `json:"rounds,omitempty" db:"-"`
	Thumbnails []Thumbnail `json:"thumbnails,omitempty" db:"-"`
	Battles    []Battle    `json:"battles,omitempty" db:"-"`
}

// RoundByNumber returns the round definition for number, or nil if none exists.
func (t *Tournament) RoundByNumber(number int) *Round {
	for i := range t.Rounds {
		if t.Rounds[i].Number == number {
			return &t.Rounds[i]
		}
	}
	return nil
}
