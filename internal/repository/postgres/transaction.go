package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vellum/internal/domain/repositories"
)

// TransactionManager implements the TransactionManager interface
type TransactionManager struct {
	pool *pgxpool.Pool
	// lockTimeout bounds row-lock waits inside ExecLocked transactions.
	lockTimeout time.Duration
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(pool *pgxpool.Pool, lockTimeout time.Duration) repositories.TransactionManager {
	return &TransactionManager{pool: pool, lockTimeout: lockTimeout}
}

// ExecTx executes a function within a transaction
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return tm.run(ctx, fn, false)
}

// ExecLocked executes a function within a transaction whose row-lock waits
// are bounded by the configured lock timeout. SET LOCAL scopes the setting to
// this transaction only.
func (tm *TransactionManager) ExecLocked(ctx context.Context, fn repositories.TxFn) error {
	return tm.run(ctx, fn, true)
}

func (tm *TransactionManager) run(ctx context.Context, fn repositories.TxFn, bounded bool) error {
	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Defer rollback - safe even if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.Error("rollback failed", "error", err)
		}
	}()

	if bounded {
		timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", tm.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, timeout); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	// Store transaction in context so repositories can access it
	txCtx := repositories.SetTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
