package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/framefight/arena/models"
	"github.com/lib/pq"
)

var ErrPointsUserInvalid = errors.New("points transaction user reference invalid")

type PointsRepository interface {
	Append(ctx context.Context, exec SQLExecutor, tx *models.PointsTransaction) error
	SumByUser(ctx context.Context, userID int) (int, error)
	ListByUser(ctx context.Context, userID int, limit, offset int) ([]*models.PointsTransaction, error)
}

type postgresPointsRepository struct {
	db *sql.DB
}

func NewPostgresPointsRepository(db *sql.DB) PointsRepository {
	return &postgresPointsRepository{db: db}
}

func (r *postgresPointsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPointsRepository) Append(ctx context.Context, exec SQLExecutor, t *models.PointsTransaction) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO points_transactions
			(id, user_id, points, type, tournament_id, round_number, battle_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query,
		t.ID, t.UserID, t.Points, t.Type, t.TournamentID, t.RoundNumber, t.BattleID,
	).Scan(&t.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "points_transactions_user_id_fkey" {
			return ErrPointsUserInvalid
		}
		return fmt.Errorf("failed to append points transaction for user %d: %w", t.UserID, err)
	}
	return nil
}

func (r *postgresPointsRepository) SumByUser(ctx context.Context, userID int) (int, error) {
	var total int
	query := `SELECT COALESCE(SUM(points), 0) FROM points_transactions WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum points for user %d: %w", userID, err)
	}
	return total, nil
}

func (r *postgresPointsRepository) ListByUser(ctx context.Context, userID int, limit, offset int) ([]*models.PointsTransaction, error) {
	query := `
		SELECT id, user_id, points, type, tournament_id, round_number, battle_id, created_at
		FROM points_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query points transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	transactions := make([]*models.PointsTransaction, 0)
	for rows.Next() {
		t := &models.PointsTransaction{}
		if scanErr := rows.Scan(
			&t.ID, &t.UserID, &t.Points, &t.Type,
			&t.TournamentID, &t.RoundNumber, &t.BattleID, &t.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan points transaction row: %w", scanErr)
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during points transaction rows iteration: %w", err)
	}
	return transactions, nil
}
