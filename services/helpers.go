package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/framefight/arena/repositories"
)

// TransactionRunner scopes a unit of work to one database transaction. The
// engine's round transitions either commit all their writes or none.
type TransactionRunner interface {
	WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

type sqlTransactionRunner struct {
	db *sql.DB
}

func NewSQLTransactionRunner(db *sql.DB) TransactionRunner {
	return &sqlTransactionRunner{db: db}
}

func (r *sqlTransactionRunner) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
