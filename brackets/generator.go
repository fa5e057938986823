package brackets

import "context"

// Pairing is one generated battle slot assignment. ThumbnailBID is nil for a
// bye, which the caller writes pre-resolved in favor of side A.
type Pairing struct {
	ThumbnailAID int
	ThumbnailBID *int
}

func (p Pairing) IsBye() bool {
	return p.ThumbnailBID == nil
}

// GenerateRoundParams carries the eligible entries for one round and, for
// rounds past the first, who has already faced whom in this tournament.
type GenerateRoundParams struct {
	EligibleIDs     []int
	OpponentHistory map[int][]int
}

// RoundGenerator produces the pairings for a single round, covering every
// eligible entry exactly once. Exactly one eligible entry yields zero
// pairings, which callers treat as the conclusion signal. Generators need not
// be deterministic; the scheduler's per-round existence check guards reruns.
type RoundGenerator interface {
	GenerateRound(ctx context.Context, params GenerateRoundParams) ([]Pairing, error)

	GetName() string
}
