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
	ErrThumbnailNotFound          = errors.New("thumbnail not found")
	ErrThumbnailTournamentInvalid = errors.New("thumbnail tournament reference invalid")
	ErrThumbnailCreatorInvalid    = errors.New("thumbnail creator reference invalid")
)

type ThumbnailRepository interface {
	Create(ctx context.Context, thumbnail *models.Thumbnail) error
	GetByID(ctx context.Context, id int) (*models.Thumbnail, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Thumbnail, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	UpdateRatingAndCounters(ctx context.Context, exec SQLExecutor, thumbnail *models.Thumbnail) error
	UpdateImageKey(ctx context.Context, id int, imageKey *string) error
}

type postgresThumbnailRepository struct {
	db *sql.DB
}

func NewPostgresThumbnailRepository(db *sql.DB) ThumbnailRepository {
	return &postgresThumbnailRepository{db: db}
}

func (r *postgresThumbnailRepository) Create(ctx context.Context, t *models.Thumbnail) error {
	query := `
		INSERT INTO thumbnails
			(tournament_id, creator_id, title, image_key, elo_rating)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.TournamentID, t.CreatorID, t.Title, t.ImageKey, t.EloRating,
	).Scan(&t.ID, &t.CreatedAt)
	return r.handleThumbnailError(err)
}

func (r *postgresThumbnailRepository) GetByID(ctx context.Context, id int) (*models.Thumbnail, error) {
	query := `
		SELECT id, tournament_id, creator_id, title, image_key,
		       elo_rating, battle_count, win_count, loss_count, created_at
		FROM thumbnails
		WHERE id = $1`

	t := &models.Thumbnail{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.TournamentID, &t.CreatorID, &t.Title, &t.ImageKey,
		&t.EloRating, &t.BattleCount, &t.WinCount, &t.LossCount, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrThumbnailNotFound
		}
		return nil, fmt.Errorf("failed to scan thumbnail %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresThumbnailRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Thumbnail, error) {
	query := `
		SELECT id, tournament_id, creator_id, title, image_key,
		       elo_rating, battle_count, win_count, loss_count, created_at
		FROM thumbnails
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query thumbnails for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	thumbnails := make([]*models.Thumbnail, 0)
	for rows.Next() {
		t := &models.Thumbnail{}
		if scanErr := rows.Scan(
			&t.ID, &t.TournamentID, &t.CreatorID, &t.Title, &t.ImageKey,
			&t.EloRating, &t.BattleCount, &t.WinCount, &t.LossCount, &t.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan thumbnail row: %w", scanErr)
		}
		thumbnails = append(thumbnails, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during thumbnail rows iteration: %w", err)
	}
	return thumbnails, nil
}

func (r *postgresThumbnailRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM thumbnails WHERE tournament_id = $1`
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count thumbnails for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

// UpdateRatingAndCounters writes back the rating and the battle counters. The
// resolver is the only caller and always runs it inside its transaction.
func (r *postgresThumbnailRepository) UpdateRatingAndCounters(ctx context.Context, exec SQLExecutor, t *models.Thumbnail) error {
	query := `
		UPDATE thumbnails
		SET elo_rating = $1, battle_count = $2, win_count = $3, loss_count = $4
		WHERE id = $5`

	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	result, err := executor.ExecContext(ctx, query,
		t.EloRating, t.BattleCount, t.WinCount, t.LossCount, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rating for thumbnail %d: %w", t.ID, err)
	}
	return checkAffectedRows(result, ErrThumbnailNotFound)
}

func (r *postgresThumbnailRepository) UpdateImageKey(ctx context.Context, id int, imageKey *string) error {
	query := `UPDATE thumbnails SET image_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, imageKey, id)
	if err != nil {
		return fmt.Errorf("failed to update image key for thumbnail %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrThumbnailNotFound)
}

func (r *postgresThumbnailRepository) handleThumbnailError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "thumbnails_tournament_id_fkey":
			return ErrThumbnailTournamentInvalid
		case "thumbnails_creator_id_fkey":
			return ErrThumbnailCreatorInvalid
		}
	}
	return err
}
