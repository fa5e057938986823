package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/framefight/arena/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentInvalidCreator = errors.New("invalid tournament creator reference")
	ErrRoundConflict            = errors.New("round number already exists for this tournament")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListByStatus(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerThumbnailID int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts the tournament together with its round definitions in one
// transaction; rounds never exist without their tournament.
func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tournament create transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tournaments
			(title, category, creator_id, registration_deadline, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		t.Title, t.Category, t.CreatorID,
		t.RegistrationDeadline, t.StartDate, t.EndDate, t.Status,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return r.handleTournamentError(err)
	}

	roundQuery := `
		INSERT INTO tournament_rounds
			(tournament_id, number, start_date, end_date, theme,
			 reward_points, reward_badges, reward_specials)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	for i := range t.Rounds {
		rd := &t.Rounds[i]
		rd.TournamentID = t.ID
		err = tx.QueryRowContext(ctx, roundQuery,
			rd.TournamentID, rd.Number, rd.StartDate, rd.EndDate, rd.Theme,
			rd.Reward.Points, pq.Array(rd.Reward.Badges), pq.Array(rd.Reward.SpecialRewards),
		).Scan(&rd.ID)
		if err != nil {
			return r.handleTournamentError(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tournament create transaction: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, title, category, creator_id, registration_deadline,
		       start_date, end_date, status, winner_thumbnail_id, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Category, &t.CreatorID, &t.RegistrationDeadline,
		&t.StartDate, &t.EndDate, &t.Status, &t.WinnerThumbnailID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}

	if t.Rounds, err = r.listRounds(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) ListByStatus(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error) {
	query := `
		SELECT id, title, category, creator_id, registration_deadline,
		       start_date, end_date, status, winner_thumbnail_id, created_at
		FROM tournaments
		WHERE status = $1
		ORDER BY start_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments with status %s: %w", status, err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t := &models.Tournament{}
		if scanErr := rows.Scan(
			&t.ID, &t.Title, &t.Category, &t.CreatorID, &t.RegistrationDeadline,
			&t.StartDate, &t.EndDate, &t.Status, &t.WinnerThumbnailID, &t.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}

	for _, t := range tournaments {
		if t.Rounds, err = r.listRounds(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerThumbnailID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET winner_thumbnail_id = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, winnerThumbnailID, id)
	if err != nil {
		return fmt.Errorf("failed to set winner for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) listRounds(ctx context.Context, tournamentID int) ([]models.Round, error) {
	query := `
		SELECT id, tournament_id, number, start_date, end_date, theme,
		       reward_points, reward_badges, reward_specials
		FROM tournament_rounds
		WHERE tournament_id = $1
		ORDER BY number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	rounds := make([]models.Round, 0)
	for rows.Next() {
		var rd models.Round
		if scanErr := rows.Scan(
			&rd.ID, &rd.TournamentID, &rd.Number, &rd.StartDate, &rd.EndDate, &rd.Theme,
			&rd.Reward.Points, pq.Array(&rd.Reward.Badges), pq.Array(&rd.Reward.SpecialRewards),
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", scanErr)
		}
		rounds = append(rounds, rd)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during round rows iteration: %w", err)
	}
	return rounds, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournament_rounds_tournament_id_number_key" {
				return ErrRoundConflict
			}
		case "23503":
			if pqErr.Constraint == "tournaments_creator_id_fkey" {
				return ErrTournamentInvalidCreator
			}
		}
	}
	return err
}
