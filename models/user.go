package models

import "time"

const (
	RoleCreator = "creator"
	RoleSystem  = "system"
)

// User is reference data only. Account management and authentication live in
// the identity service; this table carries what the engine needs to attribute
// battles, points and rewards. The single row with RoleSystem is the system
// actor used as creator of automatically generated battles.
type User struct {
	ID          int       `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Role        string    `json:"role" db:"role"`
	ArenaScore  int       `json:"arena_score" db:"arena_score"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
