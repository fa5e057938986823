package models

import "time"

// PointsTransactionType attributes a ledger entry to the event that caused it.
type PointsTransactionType string

const (
	PointsTypeBattleWin     PointsTransactionType = "battle_win"
	PointsTypeBattleLoss    PointsTransactionType = "battle_loss"
	PointsTypeRoundWin      PointsTransactionType = "round_win"
	PointsTypeTournamentWin PointsTransactionType = "tournament_win"
	PointsTypeManualAdjust  PointsTransactionType = "manual_adjust"
)

// PointsTransaction is one append-only arena points ledger entry. A user's
// balance is the sum of their transactions; the ledger is the audit source of
// truth even where a denormalized counter exists.
type PointsTransaction struct {
	ID           string                `json:"id" db:"id"`
	UserID       int                   `json:"user_id" db:"user_id"`
	Points       int                   `json:"points" db:"points"`
	Type         PointsTransactionType `json:"type" db:"type"`
	TournamentID *int                  `json:"tournament_id,omitempty" db:"tournament_id"`
	RoundNumber  *int                  `json:"round_number,omitempty" db:"round_number"`
	BattleID     *int                  `json:"battle_id,omitempty" db:"battle_id"`
	CreatedAt    time.Time             `json:"created_at" db:"created_at"`
}
