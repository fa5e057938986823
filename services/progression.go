package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/framefight/arena/brackets"
	"github.com/framefight/arena/models"
	"github.com/framefight/arena/repositories"
)

// MinTournamentParticipants is the threshold below which a pending tournament
// is cancelled instead of started.
const MinTournamentParticipants = 2

// ProgressionService drives the tournament lifecycle:
//
//	pending -> active -> concluded, with pending|active -> cancelled
//
// Each tick runs a start sweep over pending tournaments and an advance sweep
// over active ones. Every transition is guarded so that repeated ticks
// observing the same state are no-ops: round generation checks for existing
// battles, battle resolution is set-once, reward grants are marker-gated.
type ProgressionService struct {
	tx          TransactionRunner
	tournaments repositories.TournamentRepository
	thumbnails  repositories.ThumbnailRepository
	battles     repositories.BattleRepository
	users       repositories.UserRepository
	generator   brackets.RoundGenerator
	resolver    *BattleResolver
	distributor *RewardDistributor
	logger      *slog.Logger
	now         func() time.Time
}

func NewProgressionService(
	tx TransactionRunner,
	tournaments repositories.TournamentRepository,
	thumbnails repositories.ThumbnailRepository,
	battles repositories.BattleRepository,
	users repositories.UserRepository,
	generator brackets.RoundGenerator,
	resolver *BattleResolver,
	distributor *RewardDistributor,
	logger *slog.Logger,
) *ProgressionService {
	return &ProgressionService{
		tx:          tx,
		tournaments: tournaments,
		thumbnails:  thumbnails,
		battles:     battles,
		users:       users,
		generator:   generator,
		resolver:    resolver,
		distributor: distributor,
		logger:      logger,
		now:         time.Now,
	}
}

// RunTick performs one scheduler tick: the start sweep, then the advance
// sweep. Failures inside a single tournament are logged and isolated so one
// broken tournament never blocks the rest; the next tick retries them.
func (s *ProgressionService) RunTick(ctx context.Context) error {
	now := s.now()

	if err := s.runStartSweep(ctx, now); err != nil {
		return fmt.Errorf("start sweep failed: %w", err)
	}
	if err := s.runAdvanceSweep(ctx, now); err != nil {
		return fmt.Errorf("advance sweep failed: %w", err)
	}
	return nil
}

func (s *ProgressionService) runStartSweep(ctx context.Context, now time.Time) error {
	pending, err := s.tournaments.ListByStatus(ctx, models.TournamentStatusPending)
	if err != nil {
		return err
	}

	for _, t := range pending {
		if err := s.startTournament(ctx, t, now); err != nil {
			s.logger.Error("failed to start tournament",
				slog.Int("tournament_id", t.ID),
				slog.Any("error", err))
		}
	}
	return nil
}

// startTournament evaluates the pending transitions for one tournament. The
// cancellation check runs before the start check: too few participants at the
// deadline always cancels.
func (s *ProgressionService) startTournament(ctx context.Context, t *models.Tournament, now time.Time) error {
	round1 := t.RoundByNumber(1)
	if round1 == nil || round1.StartDate.IsZero() || round1.EndDate.IsZero() {
		return fmt.Errorf("tournament %d round 1: %w", t.ID, ErrMisconfiguredRound)
	}
	if now.Before(t.RegistrationDeadline) || now.Before(round1.StartDate) {
		return nil // not due yet
	}

	participantCount, err := s.thumbnails.CountByTournament(ctx, t.ID)
	if err != nil {
		return err
	}
	if participantCount < MinTournamentParticipants {
		if err := s.tournaments.UpdateStatus(ctx, nil, t.ID, models.TournamentStatusCancelled); err != nil {
			return err
		}
		s.logger.Info("tournament cancelled",
			slog.Int("tournament_id", t.ID),
			slog.Int("participants", participantCount),
			slog.String("reason", ErrInsufficientParticipants.Error()))
		return nil
	}

	entries, err := s.thumbnails.ListByTournament(ctx, t.ID)
	if err != nil {
		return err
	}
	eligibleIDs := make([]int, len(entries))
	for i, e := range entries {
		eligibleIDs[i] = e.ID
	}

	actorID, err := s.resolveActor(ctx, t)
	if err != nil {
		return err
	}

	batch, err := s.buildRoundBattles(ctx, t, 1, eligibleIDs, nil, actorID)
	if err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if len(batch) > 0 {
			if err := s.battles.CreateBatch(ctx, exec, batch); err != nil {
				return err
			}
		}
		return s.tournaments.UpdateStatus(ctx, exec, t.ID, models.TournamentStatusActive)
	})
	if err != nil {
		return err
	}

	s.logger.Info("tournament started",
		slog.Int("tournament_id", t.ID),
		slog.Int("participants", participantCount),
		slog.Int("battles_created", len(batch)))
	return nil
}

func (s *ProgressionService) runAdvanceSweep(ctx context.Context, now time.Time) error {
	active, err := s.tournaments.ListByStatus(ctx, models.TournamentStatusActive)
	if err != nil {
		return err
	}

	for _, t := range active {
		if err := s.advanceTournament(ctx, t, now); err != nil {
			s.logger.Error("failed to advance tournament",
				slog.Int("tournament_id", t.ID),
				slog.Any("error", err))
		}
	}
	return nil
}

// advanceTournament moves one active tournament forward at most one round per
// tick: force-resolve the ended round, reward its winners, then either
// generate the next round or conclude.
func (s *ProgressionService) advanceTournament(ctx context.Context, t *models.Tournament, now time.Time) error {
	currentNumber, err := s.battles.MaxRoundNumber(ctx, t.ID)
	if err != nil {
		return err
	}
	if currentNumber == 0 {
		return fmt.Errorf("tournament %d: %w", t.ID, ErrNoCurrentRound)
	}

	round := t.RoundByNumber(currentNumber)
	if round == nil || round.StartDate.IsZero() || round.EndDate.IsZero() {
		return fmt.Errorf("tournament %d round %d: %w", t.ID, currentNumber, ErrMisconfiguredRound)
	}
	if now.Before(round.EndDate) {
		return nil // round still running
	}

	if err := s.forceResolveRound(ctx, t, currentNumber); err != nil {
		return err
	}

	progress, err := s.battles.CountByRound(ctx, t.ID, currentNumber)
	if err != nil {
		return err
	}
	if !progress.Complete() {
		// Leave state untouched; the next tick retries the stragglers.
		s.logger.Warn("round incomplete after forced resolution",
			slog.Int("tournament_id", t.ID),
			slog.Int("round", currentNumber),
			slog.Int("total", progress.Total),
			slog.Int("terminal", progress.Terminal))
		return nil
	}

	winnerIDs, err := s.battles.ListRoundWinnerIDs(ctx, t.ID, currentNumber)
	if err != nil {
		return err
	}

	// Reward failures never block advancement; they are logged for manual
	// backfill because blind retries could over-grant.
	if err := s.distributor.DistributeRoundRewards(ctx, t, round, winnerIDs); err != nil {
		s.logger.Error("round reward distribution failed, advancing anyway",
			slog.Int("tournament_id", t.ID),
			slog.Int("round", currentNumber),
			slog.Any("error", err))
	}

	nextRound := t.RoundByNumber(currentNumber + 1)
	if nextRound == nil || len(winnerIDs) <= 1 {
		return s.concludeTournament(ctx, t, winnerIDs)
	}
	if nextRound.StartDate.IsZero() || nextRound.EndDate.IsZero() {
		return fmt.Errorf("tournament %d round %d: %w", t.ID, nextRound.Number, ErrMisconfiguredRound)
	}
	if now.Before(nextRound.StartDate) {
		return nil // next round not open yet
	}

	return s.generateNextRound(ctx, t, nextRound.Number, winnerIDs)
}

func (s *ProgressionService) forceResolveRound(ctx context.Context, t *models.Tournament, roundNumber int) error {
	roundBattles, err := s.battles.ListByRound(ctx, t.ID, roundNumber)
	if err != nil {
		return err
	}

	for _, b := range roundBattles {
		if b.IsTerminal() {
			continue
		}
		if _, err := s.resolver.Resolve(ctx, b.ID, ResolveOptions{ForceTieBreak: true}); err != nil {
			if errors.Is(err, repositories.ErrBattleAlreadyResolved) {
				// Desired end state already holds; a concurrent path beat us.
				s.logger.Warn("battle already resolved",
					slog.Int("battle_id", b.ID),
					slog.Int("tournament_id", t.ID))
				continue
			}
			return fmt.Errorf("failed to resolve battle %d: %w", b.ID, err)
		}
	}
	return nil
}

func (s *ProgressionService) generateNextRound(ctx context.Context, t *models.Tournament, roundNumber int, eligibleIDs []int) error {
	history, err := s.battles.ListOpponentHistory(ctx, t.ID)
	if err != nil {
		return err
	}

	actorID, err := s.resolveActor(ctx, t)
	if err != nil {
		return err
	}

	batch, err := s.buildRoundBattles(ctx, t, roundNumber, eligibleIDs, history, actorID)
	if err != nil {
		return err
	}
	if batch == nil {
		return nil // battles already exist for this round
	}
	if len(batch) == 0 {
		// One entry remained after all; degenerate conclusion.
		return s.concludeTournament(ctx, t, eligibleIDs)
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.battles.CreateBatch(ctx, exec, batch)
	})
	if err != nil {
		return err
	}

	s.logger.Info("round generated",
		slog.Int("tournament_id", t.ID),
		slog.Int("round", roundNumber),
		slog.String("generator", s.generator.GetName()),
		slog.Int("battles_created", len(batch)))
	return nil
}

// buildRoundBattles turns generator pairings into battle rows. It returns nil
// (with no error) when battles for the round already exist, which keeps
// consecutive ticks from double-generating a bracket.
func (s *ProgressionService) buildRoundBattles(ctx context.Context, t *models.Tournament, roundNumber int, eligibleIDs []int, history map[int][]int, actorID int) ([]*models.Battle, error) {
	progress, err := s.battles.CountByRound(ctx, t.ID, roundNumber)
	if err != nil {
		return nil, err
	}
	if progress.Total > 0 {
		s.logger.Info("battles already generated, skipping",
			slog.Int("tournament_id", t.ID),
			slog.Int("round", roundNumber),
			slog.Int("existing", progress.Total))
		return nil, nil
	}

	pairings, err := s.generator.GenerateRound(ctx, brackets.GenerateRoundParams{
		EligibleIDs:     eligibleIDs,
		OpponentHistory: history,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate round %d for tournament %d: %w", roundNumber, t.ID, err)
	}

	now := s.now()
	batch := make([]*models.Battle, 0, len(pairings))
	for _, p := range pairings {
		b := &models.Battle{
			TournamentID: t.ID,
			RoundNumber:  roundNumber,
			ThumbnailAID: p.ThumbnailAID,
			ThumbnailBID: p.ThumbnailBID,
			CreatedByID:  actorID,
		}
		if p.IsBye() {
			// Byes are written pre-resolved in favor of their only side.
			side := models.BattleSideA
			resolvedAt := now
			b.WinnerSide = &side
			b.ResolvedAt = &resolvedAt
		}
		batch = append(batch, b)
	}
	return batch, nil
}

func (s *ProgressionService) concludeTournament(ctx context.Context, t *models.Tournament, remainingIDs []int) error {
	championID, err := s.pickChampion(ctx, t, remainingIDs)
	if err != nil {
		return err
	}

	champion, err := s.thumbnails.GetByID(ctx, championID)
	if err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournaments.SetWinner(ctx, exec, t.ID, champion.ID); err != nil {
			return err
		}
		return s.tournaments.UpdateStatus(ctx, exec, t.ID, models.TournamentStatusConcluded)
	})
	if err != nil {
		return err
	}

	s.logger.Info("tournament concluded",
		slog.Int("tournament_id", t.ID),
		slog.Int("champion_thumbnail_id", champion.ID))

	if err := s.distributor.DistributeTournamentRewards(ctx, t, champion); err != nil {
		s.logger.Error("tournament reward distribution failed",
			slog.Int("tournament_id", t.ID),
			slog.Any("error", err))
	}
	return nil
}

// pickChampion expects a single remaining entry. A tournament whose round
// list ran out while several entries remained is concluded anyway, with the
// highest-rated survivor as champion.
func (s *ProgressionService) pickChampion(ctx context.Context, t *models.Tournament, remainingIDs []int) (int, error) {
	if len(remainingIDs) == 0 {
		return 0, fmt.Errorf("tournament %d has no remaining entries to conclude with", t.ID)
	}
	if len(remainingIDs) == 1 {
		return remainingIDs[0], nil
	}

	s.logger.Warn("concluding with multiple remaining entries, picking highest rated",
		slog.Int("tournament_id", t.ID),
		slog.Int("remaining", len(remainingIDs)))

	best := -1
	bestRating := 0
	for _, id := range remainingIDs {
		thumb, err := s.thumbnails.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		if best == -1 || thumb.EloRating > bestRating {
			best = thumb.ID
			bestRating = thumb.EloRating
		}
	}
	return best, nil
}

// resolveActor returns the system actor attributed as creator of generated
// battles, falling back to the tournament's own creator when no system
// account is stored.
func (s *ProgressionService) resolveActor(ctx context.Context, t *models.Tournament) (int, error) {
	actor, err := s.users.GetSystemActor(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrSystemActorNotFound) {
			s.logger.Warn("system actor missing, attributing battles to tournament creator",
				slog.Int("tournament_id", t.ID),
				slog.Int("creator_id", t.CreatorID))
			return t.CreatorID, nil
		}
		return 0, err
	}
	return actor.ID, nil
}
