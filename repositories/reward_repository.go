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
	ErrRewardUserInvalid    = errors.New("reward user reference invalid")
	ErrRewardAlreadyGranted = errors.New("rewards already granted for this round")
)

type RewardRepository interface {
	Append(ctx context.Context, exec SQLExecutor, reward *models.UserReward) error
	ListByUser(ctx context.Context, userID int) ([]*models.UserReward, error)
}

// RewardMarkerRepository persists the per-(tournament, round, kind)
// distribution marker. InsertMarker runs in the same transaction as the
// grants it guards; ErrRewardAlreadyGranted means an earlier tick won.
type RewardMarkerRepository interface {
	InsertMarker(ctx context.Context, exec SQLExecutor, marker *models.RewardMarker) error
}

type postgresRewardRepository struct {
	db *sql.DB
}

func NewPostgresRewardRepository(db *sql.DB) RewardRepository {
	return &postgresRewardRepository{db: db}
}

func (r *postgresRewardRepository) Append(ctx context.Context, exec SQLExecutor, reward *models.UserReward) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	query := `
		INSERT INTO user_rewards
			(id, user_id, type, name, tournament_id, round_number, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query,
		reward.ID, reward.UserID, reward.Type, reward.Name,
		reward.TournamentID, reward.RoundNumber, reward.Payload,
	).Scan(&reward.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "user_rewards_user_id_fkey" {
			return ErrRewardUserInvalid
		}
		return fmt.Errorf("failed to append reward for user %d: %w", reward.UserID, err)
	}
	return nil
}

func (r *postgresRewardRepository) ListByUser(ctx context.Context, userID int) ([]*models.UserReward, error) {
	query := `
		SELECT id, user_id, type, name, tournament_id, round_number, payload, created_at
		FROM user_rewards
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards for user %d: %w", userID, err)
	}
	defer rows.Close()

	rewards := make([]*models.UserReward, 0)
	for rows.Next() {
		reward := &models.UserReward{}
		if scanErr := rows.Scan(
			&reward.ID, &reward.UserID, &reward.Type, &reward.Name,
			&reward.TournamentID, &reward.RoundNumber, &reward.Payload, &reward.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan reward row: %w", scanErr)
		}
		rewards = append(rewards, reward)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during reward rows iteration: %w", err)
	}
	return rewards, nil
}

type postgresRewardMarkerRepository struct {
	db *sql.DB
}

func NewPostgresRewardMarkerRepository(db *sql.DB) RewardMarkerRepository {
	return &postgresRewardMarkerRepository{db: db}
}

func (r *postgresRewardMarkerRepository) InsertMarker(ctx context.Context, exec SQLExecutor, marker *models.RewardMarker) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	query := `
		INSERT INTO reward_markers (tournament_id, round_number, kind)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		marker.TournamentID, marker.RoundNumber, marker.Kind,
	).Scan(&marker.ID, &marker.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrRewardAlreadyGranted
		}
		return fmt.Errorf("failed to insert reward marker for tournament %d round %d: %w",
			marker.TournamentID, marker.RoundNumber, err)
	}
	return nil
}
