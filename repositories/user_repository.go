package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/framefight/arena/models"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrSystemActorNotFound = errors.New("system actor not found")
)

type UserRepository interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetSystemActor(ctx context.Context) (*models.User, error)
	AddArenaScore(ctx context.Context, exec SQLExecutor, userID, delta int) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, display_name, role, arena_score, created_at
		FROM users
		WHERE id = $1`

	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.DisplayName, &u.Role, &u.ArenaScore, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user %d: %w", id, err)
	}
	return u, nil
}

// GetSystemActor resolves the stored non-human account used as the creator of
// automatically generated battles. Callers fall back to the tournament
// creator when it is absent.
func (r *postgresUserRepository) GetSystemActor(ctx context.Context) (*models.User, error) {
	query := `
		SELECT id, display_name, role, arena_score, created_at
		FROM users
		WHERE role = $1
		ORDER BY id ASC
		LIMIT 1`

	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, models.RoleSystem).Scan(
		&u.ID, &u.DisplayName, &u.Role, &u.ArenaScore, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSystemActorNotFound
		}
		return nil, fmt.Errorf("failed to scan system actor: %w", err)
	}
	return u, nil
}

// AddArenaScore bumps the denormalized per-user score counter. The points
// ledger stays the source of truth for history.
func (r *postgresUserRepository) AddArenaScore(ctx context.Context, exec SQLExecutor, userID, delta int) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	query := `UPDATE users SET arena_score = arena_score + $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, delta, userID)
	if err != nil {
		return fmt.Errorf("failed to add arena score for user %d: %w", userID, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}
