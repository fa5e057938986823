package services

import (
	"context"
	"testing"
	"time"

	"github.com/framefight/arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rewardTournament(id int) *models.Tournament {
	return &models.Tournament{ID: id, Title: "weekly clash", Status: models.TournamentStatusActive}
}

func TestDistributeRoundRewardsGrantsConfiguredBundle(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	f.addUser(10, models.RoleCreator)
	f.addUser(11, models.RoleCreator)
	thumbA := f.addThumbnail(1, 10, 1200)
	thumbB := f.addThumbnail(1, 11, 1200)

	round := &models.Round{
		Number:    1,
		StartDate: time.Now().Add(-2 * time.Hour),
		EndDate:   time.Now().Add(-time.Hour),
		Reward: models.RoundReward{
			Points:         120,
			Badges:         []string{"round_one_survivor"},
			SpecialRewards: []string{"golden_frame"},
		},
	}

	err := f.distributor.DistributeRoundRewards(ctx, rewardTournament(1), round, []int{thumbA.ID, thumbB.ID})
	require.NoError(t, err)

	for _, creatorID := range []int{10, 11} {
		user, _ := f.users.GetByID(ctx, creatorID)
		assert.Equal(t, 120, user.ArenaScore)

		rewards, _ := f.rewards.ListByUser(ctx, creatorID)
		require.Len(t, rewards, 2)
	}
	assert.Len(t, f.points.byType(models.PointsTypeRoundWin), 2)
}

func TestDistributeRoundRewardsDefaultsPoints(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	f.addUser(10, models.RoleCreator)
	thumb := f.addThumbnail(1, 10, 1200)

	round := &models.Round{Number: 2}
	err := f.distributor.DistributeRoundRewards(ctx, rewardTournament(1), round, []int{thumb.ID})
	require.NoError(t, err)

	user, _ := f.users.GetByID(ctx, 10)
	assert.Equal(t, DefaultRoundWinPoints, user.ArenaScore)
}

func TestDistributeRoundRewardsOnlyOnce(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	f.addUser(10, models.RoleCreator)
	thumb := f.addThumbnail(1, 10, 1200)
	round := &models.Round{Number: 1, Reward: models.RoundReward{Points: 75}}

	require.NoError(t, f.distributor.DistributeRoundRewards(ctx, rewardTournament(1), round, []int{thumb.ID}))
	require.NoError(t, f.distributor.DistributeRoundRewards(ctx, rewardTournament(1), round, []int{thumb.ID}))

	user, _ := f.users.GetByID(ctx, 10)
	assert.Equal(t, 75, user.ArenaScore)
	assert.Len(t, f.points.store, 1)
}

func TestDistributeRoundRewardsPerRoundMarkers(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	f.addUser(10, models.RoleCreator)
	thumb := f.addThumbnail(1, 10, 1200)

	// Distinct rounds each grant; repeating either does not.
	round1 := &models.Round{Number: 1, Reward: models.RoundReward{Points: 30}}
	round2 := &models.Round{Number: 2, Reward: models.RoundReward{Points: 40}}

	require.NoError(t, f.distributor.DistributeRoundRewards(ctx, rewardTournament(1), round1, []int{thumb.ID}))
	require.NoError(t, f.distributor.DistributeRoundRewards(ctx, rewardTournament(1), round2, []int{thumb.ID}))
	require.NoError(t, f.distributor.DistributeRoundRewards(ctx, rewardTournament(1), round1, []int{thumb.ID}))

	user, _ := f.users.GetByID(ctx, 10)
	assert.Equal(t, 70, user.ArenaScore)
}

func TestDistributeTournamentRewardsOnlyOnce(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	f.addUser(10, models.RoleCreator)
	champion := f.addThumbnail(1, 10, 1400)

	require.NoError(t, f.distributor.DistributeTournamentRewards(ctx, rewardTournament(1), champion))
	require.NoError(t, f.distributor.DistributeTournamentRewards(ctx, rewardTournament(1), champion))

	user, _ := f.users.GetByID(ctx, 10)
	assert.Equal(t, TournamentVictoryPoints, user.ArenaScore)

	rewards, _ := f.rewards.ListByUser(ctx, 10)
	require.Len(t, rewards, 1)
	assert.Equal(t, models.RewardTypeSpecial, rewards[0].Type)
	assert.Equal(t, "tournament_champion", rewards[0].Name)

	assert.Len(t, f.points.byType(models.PointsTypeTournamentWin), 1)
}

func TestRoundAndTournamentMarkersAreIndependent(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	f.addUser(10, models.RoleCreator)
	thumb := f.addThumbnail(1, 10, 1200)
	round := &models.Round{Number: 1, Reward: models.RoundReward{Points: 30}}

	require.NoError(t, f.distributor.DistributeRoundRewards(ctx, rewardTournament(1), round, []int{thumb.ID}))
	require.NoError(t, f.distributor.DistributeTournamentRewards(ctx, rewardTournament(1), thumb))

	user, _ := f.users.GetByID(ctx, 10)
	assert.Equal(t, 30+TournamentVictoryPoints, user.ArenaScore)
}
