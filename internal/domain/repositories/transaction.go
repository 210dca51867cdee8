package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx executes a function within a transaction
	ExecTx(ctx context.Context, fn TxFn) error

	// ExecLocked executes a function within a transaction configured for a
	// promotion critical section: row-lock waits are bounded by a short
	// timeout, and exceeding it surfaces as a retryable timeout error.
	// No lock is ever held across a round-trip to the caller.
	ExecLocked(ctx context.Context, fn TxFn) error
}
