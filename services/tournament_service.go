package services

import (
	"context"
	"fmt"
	"time"

	"github.com/framefight/arena/models"
	"github.com/framefight/arena/repositories"
	"golang.org/x/sync/errgroup"
)

// TournamentService covers the request/response side of tournaments:
// creation with validated round configuration, and read access for the
// bracket view. Lifecycle transitions belong to the ProgressionService only.
type TournamentService struct {
	tournaments repositories.TournamentRepository
	thumbnails  repositories.ThumbnailRepository
	battles     repositories.BattleRepository
}

func NewTournamentService(
	tournaments repositories.TournamentRepository,
	thumbnails repositories.ThumbnailRepository,
	battles repositories.BattleRepository,
) *TournamentService {
	return &TournamentService{
		tournaments: tournaments,
		thumbnails:  thumbnails,
		battles:     battles,
	}
}

// CreateTournament validates the round schedule and persists the tournament
// in pending state. Rounds are created once here and treated as immutable
// afterwards.
func (s *TournamentService) CreateTournament(ctx context.Context, t *models.Tournament) error {
	if err := validateTournament(t); err != nil {
		return err
	}
	t.Status = models.TournamentStatusPending
	t.WinnerThumbnailID = nil
	return s.tournaments.Create(ctx, t)
}

func (s *TournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	return s.tournaments.GetByID(ctx, id)
}

func (s *TournamentService) ListTournaments(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error) {
	return s.tournaments.ListByStatus(ctx, status)
}

// GetBracket loads the tournament with its entries and all generated
// battles, fetched in parallel.
func (s *TournamentService) GetBracket(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		entries, err := s.thumbnails.ListByTournament(gCtx, t.ID)
		if err != nil {
			return fmt.Errorf("failed to load thumbnails for tournament %d: %w", t.ID, err)
		}
		t.Thumbnails = make([]models.Thumbnail, len(entries))
		for i, e := range entries {
			t.Thumbnails[i] = *e
		}
		return nil
	})

	g.Go(func() error {
		maxRound, err := s.battles.MaxRoundNumber(gCtx, t.ID)
		if err != nil {
			return err
		}
		all := make([]models.Battle, 0)
		for round := 1; round <= maxRound; round++ {
			roundBattles, err := s.battles.ListByRound(gCtx, t.ID, round)
			if err != nil {
				return err
			}
			for _, b := range roundBattles {
				all = append(all, *b)
			}
		}
		t.Battles = all
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

func validateTournament(t *models.Tournament) error {
	if t.Title == "" {
		return ErrTournamentTitleRequired
	}
	if len(t.Rounds) == 0 {
		return ErrTournamentNoRounds
	}
	for i := range t.Rounds {
		rd := &t.Rounds[i]
		if rd.Number != i+1 {
			return ErrTournamentRoundOrder
		}
		if rd.StartDate.IsZero() || rd.EndDate.IsZero() || !rd.EndDate.After(rd.StartDate) {
			return fmt.Errorf("round %d: %w", rd.Number, ErrTournamentInvalidDateRange)
		}
	}
	if t.RegistrationDeadline.After(t.Rounds[0].StartDate) {
		return ErrTournamentDeadlineTooLate
	}
	return nil
}

// RegistrationOpen reports whether thumbnails may still be submitted.
func RegistrationOpen(t *models.Tournament, now time.Time) bool {
	return t.Status == models.TournamentStatusPending && now.Before(t.RegistrationDeadline)
}
