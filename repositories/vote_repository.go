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
	ErrVoteDuplicate     = errors.New("voter has already voted on this battle")
	ErrVoteBattleInvalid = errors.New("vote battle reference invalid")
	ErrVoteVoterInvalid  = errors.New("vote voter reference invalid")
)

type VoteRepository interface {
	Create(ctx context.Context, vote *models.Vote) error
	ListByBattle(ctx context.Context, battleID int) ([]*models.Vote, error)
}

type postgresVoteRepository struct {
	db *sql.DB
}

func NewPostgresVoteRepository(db *sql.DB) VoteRepository {
	return &postgresVoteRepository{db: db}
}

// Create appends a vote. The votes_battle_id_voter_id_key unique constraint
// is the authority on one-vote-per-voter-per-battle.
func (r *postgresVoteRepository) Create(ctx context.Context, v *models.Vote) error {
	query := `
		INSERT INTO votes (battle_id, voter_id, side)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, v.BattleID, v.VoterID, v.Side).
		Scan(&v.ID, &v.CreatedAt)
	return r.handleVoteError(err)
}

func (r *postgresVoteRepository) ListByBattle(ctx context.Context, battleID int) ([]*models.Vote, error) {
	query := `
		SELECT id, battle_id, voter_id, side, created_at
		FROM votes
		WHERE battle_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, battleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes for battle %d: %w", battleID, err)
	}
	defer rows.Close()

	votes := make([]*models.Vote, 0)
	for rows.Next() {
		v := &models.Vote{}
		if scanErr := rows.Scan(&v.ID, &v.BattleID, &v.VoterID, &v.Side, &v.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan vote row: %w", scanErr)
		}
		votes = append(votes, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during vote rows iteration: %w", err)
	}
	return votes, nil
}

func (r *postgresVoteRepository) handleVoteError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "votes_battle_id_voter_id_key" {
				return ErrVoteDuplicate
			}
		case "23503":
			switch pqErr.Constraint {
			case "votes_battle_id_fkey":
				return ErrVoteBattleInvalid
			case "votes_voter_id_fkey":
				return ErrVoteVoterInvalid
			}
		}
	}
	return err
}
