package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/framefight/arena/models"
	"github.com/framefight/arena/repositories"
	"github.com/google/uuid"
)

const (
	// DefaultRoundWinPoints applies when a round's reward config carries no
	// point amount.
	DefaultRoundWinPoints = 50

	// TournamentVictoryPoints is the fixed champion bonus.
	TournamentVictoryPoints = 500

	tournamentChampionRewardName = "tournament_champion"
)

// RewardDistributor grants arena points and cosmetic rewards for round and
// tournament completion. Every grant batch is gated by a persisted reward
// marker inserted in the same transaction, so a tick that re-observes a
// completed round cannot grant twice.
type RewardDistributor struct {
	tx         TransactionRunner
	markers    repositories.RewardMarkerRepository
	rewards    repositories.RewardRepository
	points     repositories.PointsRepository
	users      repositories.UserRepository
	thumbnails repositories.ThumbnailRepository
	logger     *slog.Logger
}

func NewRewardDistributor(
	tx TransactionRunner,
	markers repositories.RewardMarkerRepository,
	rewards repositories.RewardRepository,
	points repositories.PointsRepository,
	users repositories.UserRepository,
	thumbnails repositories.ThumbnailRepository,
	logger *slog.Logger,
) *RewardDistributor {
	return &RewardDistributor{
		tx:         tx,
		markers:    markers,
		rewards:    rewards,
		points:     points,
		users:      users,
		thumbnails: thumbnails,
		logger:     logger,
	}
}

// DistributeRoundRewards grants the round's configured points, badges and
// special rewards to every round winner's creator, once.
func (d *RewardDistributor) DistributeRoundRewards(ctx context.Context, tournament *models.Tournament, round *models.Round, winnerThumbnailIDs []int) error {
	creatorIDs, err := d.creatorsOf(ctx, winnerThumbnailIDs)
	if err != nil {
		return err
	}

	points := round.Reward.Points
	if points <= 0 {
		points = DefaultRoundWinPoints
	}

	err = d.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		marker := &models.RewardMarker{
			TournamentID: tournament.ID,
			RoundNumber:  round.Number,
			Kind:         models.RewardMarkerRound,
		}
		if err := d.markers.InsertMarker(ctx, exec, marker); err != nil {
			return err
		}

		for _, creatorID := range creatorIDs {
			if err := d.grantPoints(ctx, exec, creatorID, points, models.PointsTypeRoundWin, tournament.ID, &round.Number); err != nil {
				return err
			}
			for _, badge := range round.Reward.Badges {
				if err := d.grantReward(ctx, exec, creatorID, models.RewardTypeBadge, badge, tournament.ID, &round.Number); err != nil {
					return err
				}
			}
			for _, special := range round.Reward.SpecialRewards {
				if err := d.grantReward(ctx, exec, creatorID, models.RewardTypeSpecial, special, tournament.ID, &round.Number); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if errors.Is(err, repositories.ErrRewardAlreadyGranted) {
		d.logger.Warn("round rewards already granted, skipping",
			slog.Int("tournament_id", tournament.ID),
			slog.Int("round", round.Number))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to distribute round rewards for tournament %d round %d: %w", tournament.ID, round.Number, err)
	}

	d.logger.Info("round rewards distributed",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("round", round.Number),
		slog.Int("winners", len(creatorIDs)),
		slog.Int("points_each", points))
	return nil
}

// DistributeTournamentRewards grants the champion's creator the victory bonus
// and the champion reward, once.
func (d *RewardDistributor) DistributeTournamentRewards(ctx context.Context, tournament *models.Tournament, champion *models.Thumbnail) error {
	err := d.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		marker := &models.RewardMarker{
			TournamentID: tournament.ID,
			RoundNumber:  0, // tournament-level grants carry no round
			Kind:         models.RewardMarkerTournament,
		}
		if err := d.markers.InsertMarker(ctx, exec, marker); err != nil {
			return err
		}

		if err := d.grantPoints(ctx, exec, champion.CreatorID, TournamentVictoryPoints, models.PointsTypeTournamentWin, tournament.ID, nil); err != nil {
			return err
		}
		return d.grantReward(ctx, exec, champion.CreatorID, models.RewardTypeSpecial, tournamentChampionRewardName, tournament.ID, nil)
	})
	if errors.Is(err, repositories.ErrRewardAlreadyGranted) {
		d.logger.Warn("tournament rewards already granted, skipping",
			slog.Int("tournament_id", tournament.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to distribute tournament rewards for tournament %d: %w", tournament.ID, err)
	}

	d.logger.Info("tournament rewards distributed",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("champion_thumbnail_id", champion.ID),
		slog.Int("champion_creator_id", champion.CreatorID))
	return nil
}

func (d *RewardDistributor) creatorsOf(ctx context.Context, thumbnailIDs []int) ([]int, error) {
	creatorIDs := make([]int, 0, len(thumbnailIDs))
	for _, id := range thumbnailIDs {
		thumb, err := d.thumbnails.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load winner thumbnail %d: %w", id, err)
		}
		creatorIDs = append(creatorIDs, thumb.CreatorID)
	}
	return creatorIDs, nil
}

func (d *RewardDistributor) grantPoints(ctx context.Context, exec repositories.SQLExecutor, userID, points int, txType models.PointsTransactionType, tournamentID int, roundNumber *int) error {
	if err := d.users.AddArenaScore(ctx, exec, userID, points); err != nil {
		return err
	}
	entry := &models.PointsTransaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Points:       points,
		Type:         txType,
		TournamentID: &tournamentID,
		RoundNumber:  roundNumber,
	}
	return d.points.Append(ctx, exec, entry)
}

func (d *RewardDistributor) grantReward(ctx context.Context, exec repositories.SQLExecutor, userID int, rewardType models.RewardType, name string, tournamentID int, roundNumber *int) error {
	reward := &models.UserReward{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         rewardType,
		Name:         name,
		TournamentID: tournamentID,
		RoundNumber:  roundNumber,
	}
	return d.rewards.Append(ctx, exec, reward)
}
