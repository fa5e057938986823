package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/framefight/arena/models"
	"github.com/lib/pq"
)

var (
	ErrBattleNotFound         = errors.New("battle not found")
	ErrBattleAlreadyResolved  = errors.New("battle winner already set")
	ErrBattleThumbnailInvalid = errors.New("battle thumbnail reference invalid")
)

// RoundProgress is the total vs terminal battle count for one round.
type RoundProgress struct {
	Total    int
	Terminal int
}

func (p RoundProgress) Complete() bool {
	return p.Total > 0 && p.Total == p.Terminal
}

type BattleRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, battles []*models.Battle) error
	GetByID(ctx context.Context, id int) (*models.Battle, error)
	ListByRound(ctx context.Context, tournamentID, roundNumber int) ([]*models.Battle, error)
	CountByRound(ctx context.Context, tournamentID, roundNumber int) (RoundProgress, error)
	ListRoundWinnerIDs(ctx context.Context, tournamentID, roundNumber int) ([]int, error)
	ListOpponentHistory(ctx context.Context, tournamentID int) (map[int][]int, error)
	MaxRoundNumber(ctx context.Context, tournamentID int) (int, error)
	SetWinner(ctx context.Context, exec SQLExecutor, id int, side models.BattleSide, resolvedAt time.Time) error
}

type postgresBattleRepository struct {
	db *sql.DB
}

func NewPostgresBattleRepository(db *sql.DB) BattleRepository {
	return &postgresBattleRepository{db: db}
}

func (r *postgresBattleRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresBattleRepository) CreateBatch(ctx context.Context, exec SQLExecutor, battles []*models.Battle) error {
	query := `
		INSERT INTO battles
			(tournament_id, round_number, thumbnail_a_id, thumbnail_b_id, winner_side, created_by_id, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	executor := r.getExecutor(exec)
	for _, b := range battles {
		err := executor.QueryRowContext(ctx, query,
			b.TournamentID, b.RoundNumber, b.ThumbnailAID, b.ThumbnailBID,
			b.WinnerSide, b.CreatedByID, b.ResolvedAt,
		).Scan(&b.ID, &b.CreatedAt)
		if err != nil {
			return r.handleBattleError(err)
		}
	}
	return nil
}

func (r *postgresBattleRepository) GetByID(ctx context.Context, id int) (*models.Battle, error) {
	query := `
		SELECT id, tournament_id, round_number, thumbnail_a_id, thumbnail_b_id,
		       winner_side, created_by_id, created_at, resolved_at
		FROM battles
		WHERE id = $1`

	b := &models.Battle{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.TournamentID, &b.RoundNumber, &b.ThumbnailAID, &b.ThumbnailBID,
		&b.WinnerSide, &b.CreatedByID, &b.CreatedAt, &b.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBattleNotFound
		}
		return nil, fmt.Errorf("failed to scan battle %d: %w", id, err)
	}
	return b, nil
}

func (r *postgresBattleRepository) ListByRound(ctx context.Context, tournamentID, roundNumber int) ([]*models.Battle, error) {
	query := `
		SELECT id, tournament_id, round_number, thumbnail_a_id, thumbnail_b_id,
		       winner_side, created_by_id, created_at, resolved_at
		FROM battles
		WHERE tournament_id = $1 AND round_number = $2
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query battles for tournament %d round %d: %w", tournamentID, roundNumber, err)
	}
	defer rows.Close()

	battles := make([]*models.Battle, 0)
	for rows.Next() {
		b := &models.Battle{}
		if scanErr := rows.Scan(
			&b.ID, &b.TournamentID, &b.RoundNumber, &b.ThumbnailAID, &b.ThumbnailBID,
			&b.WinnerSide, &b.CreatedByID, &b.CreatedAt, &b.ResolvedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan battle row: %w", scanErr)
		}
		battles = append(battles, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during battle rows iteration: %w", err)
	}
	return battles, nil
}

func (r *postgresBattleRepository) CountByRound(ctx context.Context, tournamentID, roundNumber int) (RoundProgress, error) {
	var progress RoundProgress
	query := `
		SELECT COUNT(*), COUNT(winner_side)
		FROM battles
		WHERE tournament_id = $1 AND round_number = $2`

	err := r.db.QueryRowContext(ctx, query, tournamentID, roundNumber).Scan(&progress.Total, &progress.Terminal)
	if err != nil {
		return RoundProgress{}, fmt.Errorf("failed to count battles for tournament %d round %d: %w", tournamentID, roundNumber, err)
	}
	return progress, nil
}

// ListRoundWinnerIDs returns the winning thumbnail ids of all terminal battles
// in the round, ordered by battle id.
func (r *postgresBattleRepository) ListRoundWinnerIDs(ctx context.Context, tournamentID, roundNumber int) ([]int, error) {
	query := `
		SELECT CASE WHEN winner_side = 'A' THEN thumbnail_a_id ELSE thumbnail_b_id END
		FROM battles
		WHERE tournament_id = $1 AND round_number = $2 AND winner_side IS NOT NULL
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query round winners for tournament %d round %d: %w", tournamentID, roundNumber, err)
	}
	defer rows.Close()

	winnerIDs := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("failed to scan round winner row: %w", scanErr)
		}
		winnerIDs = append(winnerIDs, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during round winner rows iteration: %w", err)
	}
	return winnerIDs, nil
}

// ListOpponentHistory returns, per thumbnail id, the ids it has already faced
// in this tournament. Byes contribute nothing.
func (r *postgresBattleRepository) ListOpponentHistory(ctx context.Context, tournamentID int) (map[int][]int, error) {
	query := `
		SELECT thumbnail_a_id, thumbnail_b_id
		FROM battles
		WHERE tournament_id = $1 AND thumbnail_b_id IS NOT NULL`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query opponent history for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	history := make(map[int][]int)
	for rows.Next() {
		var a, b int
		if scanErr := rows.Scan(&a, &b); scanErr != nil {
			return nil, fmt.Errorf("failed to scan opponent history row: %w", scanErr)
		}
		history[a] = append(history[a], b)
		history[b] = append(history[b], a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during opponent history rows iteration: %w", err)
	}
	return history, nil
}

// MaxRoundNumber returns 0 when no battles have been generated yet.
func (r *postgresBattleRepository) MaxRoundNumber(ctx context.Context, tournamentID int) (int, error) {
	var max sql.NullInt64
	query := `SELECT MAX(round_number) FROM battles WHERE tournament_id = $1`
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to query max round for tournament %d: %w", tournamentID, err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64), nil
}

// SetWinner marks the battle terminal. The WHERE guard makes the write
// set-once: a second attempt affects zero rows and reports ErrBattleAlreadyResolved.
func (r *postgresBattleRepository) SetWinner(ctx context.Context, exec SQLExecutor, id int, side models.BattleSide, resolvedAt time.Time) error {
	query := `
		UPDATE battles
		SET winner_side = $1, resolved_at = $2
		WHERE id = $3 AND winner_side IS NULL`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, side, resolvedAt, id)
	if err != nil {
		return fmt.Errorf("failed to set winner for battle %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBattleAlreadyResolved)
}

func (r *postgresBattleRepository) handleBattleError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "battles_thumbnail_a_id_fkey", "battles_thumbnail_b_id_fkey":
			return ErrBattleThumbnailInvalid
		}
	}
	return err
}
