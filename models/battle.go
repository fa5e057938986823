package models

import "time"

// BattleSide discriminates the two slots of a battle.
type BattleSide string

const (
	BattleSideA BattleSide = "A"
	BattleSideB BattleSide = "B"
)

// Battle is a single paired contest between two thumbnails within a round.
// ThumbnailBID is nil for a bye; a bye is written pre-resolved with side A as
// the winner. WinnerSide is set exactly once, by the resolver, and a battle
// with a set winner is terminal.
type Battle struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	RoundNumber  int         `json:"round_number" db:"round_number"`
	ThumbnailAID int         `json:"thumbnail_a_id" db:"thumbnail_a_id"`
	ThumbnailBID *int        `json:"thumbnail_b_id,omitempty" db:"thumbnail_b_id"`
	WinnerSide   *BattleSide `json:"winner_side,omitempty" db:"winner_side"`
	CreatedByID  int         `json:"created_by_id" db:"created_by_id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	ResolvedAt   *time.Time  `json:"resolved_at,omitempty" db:"resolved_at"`
}

// IsBye reports whether the battle has only side A populated.
func (b *Battle) IsBye() bool {
	return b.ThumbnailBID == nil
}

// IsTerminal reports whether the battle winner has been set.
func (b *Battle) IsTerminal() bool {
	return b.WinnerSide != nil
}

// WinnerThumbnailID returns the winning thumbnail id, or nil while the battle
// is unresolved.
func (b *Battle) WinnerThumbnailID() *int {
	if b.WinnerSide == nil {
		return nil
	}
	if *b.WinnerSide == BattleSideA {
		id := b.ThumbnailAID
		return &id
	}
	return b.ThumbnailBID
}
