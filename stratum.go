// Package stratum is a sequential schema-migration runner for
// PostgreSQL. Callers supply an ordered list of named migrations; the
// runner prepends the fixed bootstrap migration, takes a snapshot of
// the ledger table, and applies whatever is still pending. Each apply
// or rollback runs inside a single transaction so that a migration's
// schema changes and its ledger record land atomically.
package stratum

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/stratumdb/stratum/driver"
	"github.com/stratumdb/stratum/migration"
)

const (
	stmtBegin  = "BEGIN TRANSACTION"
	stmtCommit = "COMMIT TRANSACTION"
	stmtInsert = "INSERT INTO migrations (name) VALUES ($1)"
	stmtDelete = "DELETE FROM migrations WHERE name = $1"
)

// ---

// Runner executes migrations against a single database connection.
// RunAll is intended to be invoked once per process startup, before
// other database use begins; concurrent runs against the same database
// must be serialized externally.
type Runner struct {
	conn driver.Conn
	log  *slog.Logger
}

// Option configures the Runner.
type Option func(*Runner)

// WithLogger attaches a structured logger. The default discards all
// output.
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// New constructs a Runner on top of a database connection.
func New(conn driver.Conn, opts ...Option) *Runner {
	r := &Runner{
		conn: conn,
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// ---

// VerifyResult reports every migration's standing against the ledger.
type VerifyResult struct {
	Migrations   []migration.State
	AppliedCount uint
	PendingCount uint
	MissingCount uint
}

// ---

// RunAll brings the database to the fully-applied state. The bootstrap
// migration is prepended to the supplied list; execution order is
// exactly list order. Processing stops at the first failing statement
// and the failure is returned as a *MigrationError.
//
// Migration names are the identity: supplying two migrations with the
// same name is not guarded against and will surface as a ledger
// uniqueness violation on the second insert.
func (r *Runner) RunAll(ctx context.Context, supplied []migration.Migration) error {
	migrations := withBootstrap(supplied)
	applied := r.snapshotLedger(ctx)

	if hasNuclear(migrations) {
		// Roll everything back in reverse order, then replay the
		// whole list from a clean slate. Down statements must
		// tolerate never-applied migrations.
		for i := len(migrations) - 1; i >= 0; i-- {
			if err := r.undo(ctx, migrations[i]); err != nil {
				return err
			}
			delete(applied, migrations[i].Name)
		}
		for _, m := range migrations {
			if err := r.perform(ctx, m); err != nil {
				return err
			}
		}
		return nil
	}

	for _, m := range migrations {
		if m.Mode == migration.Debug {
			if err := r.undo(ctx, m); err != nil {
				return err
			}
			delete(applied, m.Name)
		}

		if _, ok := applied[m.Name]; !ok {
			if err := r.perform(ctx, m); err != nil {
				return err
			}
		}
	}

	return nil
}

// Verify reports which migrations are applied, pending, or recorded in
// the ledger without a matching definition. No statements execute.
func (r *Runner) Verify(ctx context.Context, supplied []migration.Migration) *VerifyResult {
	migrations := withBootstrap(supplied)
	applied := r.snapshotLedger(ctx)

	result := VerifyResult{
		Migrations: make([]migration.State, 0, len(migrations)),
	}

	known := make(map[string]struct{}, len(migrations))
	for _, m := range migrations {
		known[m.Name] = struct{}{}

		status := migration.Pending
		if _, ok := applied[m.Name]; ok {
			status = migration.Applied
			result.AppliedCount++
		} else {
			result.PendingCount++
		}

		result.Migrations = append(result.Migrations, migration.State{
			Name:   m.Name,
			Mode:   m.Mode,
			Status: status,
		})
	}

	missing := make([]string, 0)
	for name := range applied {
		if _, ok := known[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)

	for _, name := range missing {
		result.Migrations = append(result.Migrations, migration.State{
			Name:   name,
			Status: migration.Missing,
		})
		result.MissingCount++
	}

	return &result
}

// ---

func withBootstrap(supplied []migration.Migration) []migration.Migration {
	migrations := make([]migration.Migration, 0, len(supplied)+1)
	migrations = append(migrations, migration.Bootstrap())
	return append(migrations, supplied...)
}

func hasNuclear(migrations []migration.Migration) bool {
	for _, m := range migrations {
		if m.Mode == migration.NuclearDebug {
			return true
		}
	}
	return false
}

// snapshotLedger reads the applied-migrations ledger once into a set.
// Any read error means the ledger table does not exist yet (the
// expected first-run state), so the snapshot comes back empty instead
// of failing the run.
func (r *Runner) snapshotLedger(ctx context.Context) map[string]struct{} {
	names, err := r.conn.AppliedNames(ctx)
	if err != nil {
		r.log.Info("migrations ledger not readable, assuming fresh database", "error", err)
		return make(map[string]struct{})
	}

	applied := make(map[string]struct{}, len(names))
	for _, name := range names {
		applied[name] = struct{}{}
	}
	return applied
}

// perform applies one migration: every up statement in order, then the
// ledger insert, all in one transaction.
func (r *Runner) perform(ctx context.Context, m migration.Migration) error {
	r.log.Info("applying migration", "name", m.Name)

	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return &MigrationError{Statement: stmtBegin, Err: err}
	}
	defer tx.Rollback(ctx)

	for _, statement := range m.Up {
		if err := tx.Exec(ctx, statement); err != nil {
			return &MigrationError{Statement: statement, Err: err}
		}
	}

	if err := tx.Exec(ctx, stmtInsert, m.Name); err != nil {
		return &MigrationError{Statement: stmtInsert, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &MigrationError{Statement: stmtCommit, Err: err}
	}

	return nil
}

// undo rolls one migration back: every down statement in stored order
// (already the reverse of application order), then the ledger delete,
// all in one transaction. The bootstrap record is never deleted since
// its down statement drops the ledger itself.
func (r *Runner) undo(ctx context.Context, m migration.Migration) error {
	r.log.Info("rolling back migration", "name", m.Name)

	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return &MigrationError{Statement: stmtBegin, Err: err}
	}
	defer tx.Rollback(ctx)

	for _, statement := range m.Down {
		if err := tx.Exec(ctx, statement); err != nil {
			return &MigrationError{Statement: statement, Err: err}
		}
	}

	if m.Name != migration.BootstrapName {
		if err := tx.Exec(ctx, stmtDelete, m.Name); err != nil {
			return &MigrationError{Statement: stmtDelete, Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &MigrationError{Statement: stmtCommit, Err: err}
	}

	return nil
}
