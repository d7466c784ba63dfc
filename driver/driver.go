package driver

import "context"

// Conn is the database collaborator the runner executes against. It is
// deliberately narrow: a way to open a transaction and a way to bulk-
// read the ledger. No savepoints, no nested transactions.
type Conn interface {
	// Begin opens a new transaction.
	Begin(ctx context.Context) (Tx, error)

	// AppliedNames reads every recorded migration name from the
	// ledger table. On a fresh database the table does not exist
	// yet; callers treat any error here as "nothing applied".
	AppliedNames(ctx context.Context) ([]string, error)
}

// Tx is a single open transaction.
type Tx interface {
	// Exec runs one statement with optional bind parameters.
	Exec(ctx context.Context, statement string, args ...any) error

	// Commit makes the transaction's effects permanent.
	Commit(ctx context.Context) error

	// Rollback discards the transaction. Calling it after a
	// successful Commit is a no-op as far as the runner cares.
	Rollback(ctx context.Context) error
}
