package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coveredIDs(t *testing.T, pairings []Pairing) map[int]int {
	t.Helper()
	seen := make(map[int]int)
	for _, p := range pairings {
		seen[p.ThumbnailAID]++
		if p.ThumbnailBID != nil {
			seen[*p.ThumbnailBID]++
		}
	}
	return seen
}

func TestGenerateRoundEvenCount(t *testing.T) {
	g := NewShufflePairingGenerator()

	pairings, err := g.GenerateRound(context.Background(), GenerateRoundParams{
		EligibleIDs: []int{1, 2, 3, 4},
	})
	require.NoError(t, err)
	require.Len(t, pairings, 2)

	for _, p := range pairings {
		assert.False(t, p.IsBye())
	}
	seen := coveredIDs(t, pairings)
	assert.Len(t, seen, 4)
	for id, count := range seen {
		assert.Equal(t, 1, count, "entry %d paired more than once", id)
	}
}

func TestGenerateRoundOddCountLeavesOneBye(t *testing.T) {
	g := NewShufflePairingGenerator()

	pairings, err := g.GenerateRound(context.Background(), GenerateRoundParams{
		EligibleIDs: []int{1, 2, 3, 4, 5},
	})
	require.NoError(t, err)
	require.Len(t, pairings, 3)

	byes := 0
	for _, p := range pairings {
		if p.IsBye() {
			byes++
		}
	}
	assert.Equal(t, 1, byes)

	seen := coveredIDs(t, pairings)
	assert.Len(t, seen, 5)
}

func TestGenerateRoundFewerThanTwoEntries(t *testing.T) {
	g := NewShufflePairingGenerator()

	pairings, err := g.GenerateRound(context.Background(), GenerateRoundParams{EligibleIDs: []int{7}})
	require.NoError(t, err)
	assert.Empty(t, pairings)

	pairings, err = g.GenerateRound(context.Background(), GenerateRoundParams{})
	require.NoError(t, err)
	assert.Empty(t, pairings)
}

func TestGenerateRoundAvoidsRematchWhenPossible(t *testing.T) {
	g := NewShufflePairingGenerator()

	// With 1-2 and 3-4 already played, the only rematch-free rounds pair
	// across the old battles. Run repeatedly since the order is shuffled.
	history := map[int][]int{
		1: {2}, 2: {1},
		3: {4}, 4: {3},
	}
	for i := 0; i < 50; i++ {
		pairings, err := g.GenerateRound(context.Background(), GenerateRoundParams{
			EligibleIDs:     []int{1, 2, 3, 4},
			OpponentHistory: history,
		})
		require.NoError(t, err)
		require.Len(t, pairings, 2)
		for _, p := range pairings {
			require.NotNil(t, p.ThumbnailBID)
			for _, opp := range history[p.ThumbnailAID] {
				assert.NotEqual(t, opp, *p.ThumbnailBID, "rematch generated despite fresh opponents being available")
			}
		}
	}
}

func TestGenerateRoundAllowsRematchAsLastResort(t *testing.T) {
	g := NewShufflePairingGenerator()

	// Two entries that already faced each other must still get paired.
	history := map[int][]int{1: {2}, 2: {1}}
	pairings, err := g.GenerateRound(context.Background(), GenerateRoundParams{
		EligibleIDs:     []int{1, 2},
		OpponentHistory: history,
	})
	require.NoError(t, err)
	require.Len(t, pairings, 1)
	assert.False(t, pairings[0].IsBye())
}
