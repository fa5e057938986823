package models

import "time"

// Vote is an append-only record of one voter's pick for one battle. The
// (voter, battle) pair is unique at the database level; votes are never
// updated, only tallied.
type Vote struct {
	ID        int        `json:"id" db:"id"`
	BattleID  int        `json:"battle_id" db:"battle_id"`
	VoterID   int        `json:"voter_id" db:"voter_id"`
	Side      BattleSide `json:"side" db:"side"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
