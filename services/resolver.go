package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/framefight/arena/models"
	"github.com/framefight/arena/repositories"
	"github.com/google/uuid"
)

// Fixed creator awards applied at battle resolution, outside the round reward
// schedule.
const (
	BattleWinnerCreatorPoints = 25
	BattleLoserCreatorPoints  = 10
)

// ResolveOptions control the tie policy. The forced round-end path enables
// the tie break; direct callers get ErrTieVote and must decide themselves.
type ResolveOptions struct {
	ForceTieBreak bool
}

// BattleResolver settles one battle exactly once: tally, rating update,
// counters, creator awards and the winner write, all in a single transaction.
type BattleResolver struct {
	tx         TransactionRunner
	battles    repositories.BattleRepository
	votes      repositories.VoteRepository
	thumbnails repositories.ThumbnailRepository
	users      repositories.UserRepository
	points     repositories.PointsRepository
	logger     *slog.Logger
	now        func() time.Time
}

func NewBattleResolver(
	tx TransactionRunner,
	battles repositories.BattleRepository,
	votes repositories.VoteRepository,
	thumbnails repositories.ThumbnailRepository,
	users repositories.UserRepository,
	points repositories.PointsRepository,
	logger *slog.Logger,
) *BattleResolver {
	return &BattleResolver{
		tx:         tx,
		battles:    battles,
		votes:      votes,
		thumbnails: thumbnails,
		users:      users,
		points:     points,
		logger:     logger,
		now:        time.Now,
	}
}

// Resolve settles the battle. It fails with repositories.ErrBattleNotFound or
// repositories.ErrBattleAlreadyResolved per the terminal invariant, and with
// ErrTieVote on equal counts unless opts.ForceTieBreak is set, in which case
// the higher-rated thumbnail wins and equal ratings fall to side A.
func (r *BattleResolver) Resolve(ctx context.Context, battleID int, opts ResolveOptions) (*models.Battle, error) {
	battle, err := r.battles.GetByID(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if battle.IsTerminal() {
		return nil, repositories.ErrBattleAlreadyResolved
	}

	if battle.IsBye() {
		// Byes are normally written pre-resolved; settle a stray one without
		// touching ratings since nothing was contested.
		return r.resolveBye(ctx, battle)
	}

	thumbA, err := r.thumbnails.GetByID(ctx, battle.ThumbnailAID)
	if err != nil {
		return nil, fmt.Errorf("failed to load side A thumbnail for battle %d: %w", battleID, err)
	}
	thumbB, err := r.thumbnails.GetByID(ctx, *battle.ThumbnailBID)
	if err != nil {
		return nil, fmt.Errorf("failed to load side B thumbnail for battle %d: %w", battleID, err)
	}

	votes, err := r.votes.ListByBattle(ctx, battleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes for battle %d: %w", battleID, err)
	}
	counts := TallyVotes(votes)

	side, decided := counts.Leader()
	if !decided {
		if !opts.ForceTieBreak {
			return nil, fmt.Errorf("battle %d (%d:%d): %w", battleID, counts.A, counts.B, ErrTieVote)
		}
		side = breakTie(thumbA, thumbB)
		r.logger.Warn("breaking tied battle by rating",
			slog.Int("battle_id", battleID),
			slog.Int("votes_a", counts.A),
			slog.Int("votes_b", counts.B),
			slog.String("winner_side", string(side)))
	}

	winner, loser := thumbA, thumbB
	if side == models.BattleSideB {
		winner, loser = thumbB, thumbA
	}

	newWinnerRating, newLoserRating := UpdatedRatings(
		winner.EloRating, winner.BattleCount,
		loser.EloRating, loser.BattleCount,
	)

	resolvedAt := r.now()
	err = r.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Winner write goes first: its set-once guard aborts the whole unit
		// of work if a concurrent tick got here before us.
		if err := r.battles.SetWinner(ctx, exec, battle.ID, side, resolvedAt); err != nil {
			return err
		}

		winner.EloRating = newWinnerRating
		winner.BattleCount++
		winner.WinCount++
		if err := r.thumbnails.UpdateRatingAndCounters(ctx, exec, winner); err != nil {
			return err
		}

		loser.EloRating = newLoserRating
		loser.BattleCount++
		loser.LossCount++
		if err := r.thumbnails.UpdateRatingAndCounters(ctx, exec, loser); err != nil {
			return err
		}

		if err := r.awardCreator(ctx, exec, battle, winner.CreatorID, BattleWinnerCreatorPoints, models.PointsTypeBattleWin); err != nil {
			return err
		}
		return r.awardCreator(ctx, exec, battle, loser.CreatorID, BattleLoserCreatorPoints, models.PointsTypeBattleLoss)
	})
	if err != nil {
		return nil, err
	}

	battle.WinnerSide = &side
	battle.ResolvedAt = &resolvedAt
	r.logger.Info("battle resolved",
		slog.Int("battle_id", battle.ID),
		slog.Int("tournament_id", battle.TournamentID),
		slog.Int("round", battle.RoundNumber),
		slog.String("winner_side", string(side)),
		slog.Int("votes_a", counts.A),
		slog.Int("votes_b", counts.B))
	return battle, nil
}

func (r *BattleResolver) resolveBye(ctx context.Context, battle *models.Battle) (*models.Battle, error) {
	side := models.BattleSideA
	resolvedAt := r.now()
	err := r.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return r.battles.SetWinner(ctx, exec, battle.ID, side, resolvedAt)
	})
	if err != nil {
		return nil, err
	}
	battle.WinnerSide = &side
	battle.ResolvedAt = &resolvedAt
	return battle, nil
}

func (r *BattleResolver) awardCreator(ctx context.Context, exec repositories.SQLExecutor, battle *models.Battle, creatorID, points int, txType models.PointsTransactionType) error {
	if err := r.users.AddArenaScore(ctx, exec, creatorID, points); err != nil {
		// A missing creator must not wedge the round; the ledger entry is
		// skipped with it and surfaced for backfill.
		if errors.Is(err, repositories.ErrUserNotFound) {
			r.logger.Warn("creator missing, skipping battle award",
				slog.Int("battle_id", battle.ID),
				slog.Int("creator_id", creatorID))
			return nil
		}
		return err
	}

	entry := &models.PointsTransaction{
		ID:           uuid.NewString(),
		UserID:       creatorID,
		Points:       points,
		Type:         txType,
		TournamentID: &battle.TournamentID,
		RoundNumber:  &battle.RoundNumber,
		BattleID:     &battle.ID,
	}
	return r.points.Append(ctx, exec, entry)
}

// breakTie picks the higher-rated thumbnail; equal ratings fall to side A.
func breakTie(thumbA, thumbB *models.Thumbnail) models.BattleSide {
	if thumbB.EloRating > thumbA.EloRating {
		return models.BattleSideB
	}
	return models.BattleSideA
}
