package brackets

import (
	"context"
	"math/rand"
)

// ShufflePairingGenerator pairs entries two at a time off a shuffled order,
// preferring opponents the entry has not faced before. An odd entry count
// leaves the final unpaired entry with a bye.
type ShufflePairingGenerator struct {
}

func NewShufflePairingGenerator() RoundGenerator {
	return &ShufflePairingGenerator{}
}

func (g *ShufflePairingGenerator) GetName() string {
	return "ShufflePairing"
}

func (g *ShufflePairingGenerator) GenerateRound(ctx context.Context, params GenerateRoundParams) ([]Pairing, error) {
	n := len(params.EligibleIDs)
	if n < 2 {
		// Zero or one entry: nothing to pair. One remaining entry means the
		// tournament is decided.
		return []Pairing{}, nil
	}

	pool := make([]int, n)
	copy(pool, params.EligibleIDs)
	rand.Shuffle(n, func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	faced := make(map[int]map[int]bool, len(params.OpponentHistory))
	for id, opponents := range params.OpponentHistory {
		set := make(map[int]bool, len(opponents))
		for _, opp := range opponents {
			set[opp] = true
		}
		faced[id] = set
	}

	pairings := make([]Pairing, 0, n/2+1)
	for len(pool) >= 2 {
		a := pool[0]
		pool = pool[1:]

		// Prefer the first remaining entry this one has not faced; fall back
		// to a repeat pairing when everyone left is a former opponent.
		pick := 0
		for i, candidate := range pool {
			if !faced[a][candidate] {
				pick = i
				break
			}
		}
		b := pool[pick]
		pool = append(pool[:pick], pool[pick+1:]...)

		bID := b
		pairings = append(pairings, Pairing{ThumbnailAID: a, ThumbnailBID: &bID})
	}

	if len(pool) == 1 {
		pairings = append(pairings, Pairing{ThumbnailAID: pool[0]})
	}

	return pairings, nil
}
