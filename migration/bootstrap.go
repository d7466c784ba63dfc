package migration

// BootstrapName identifies the fixed migration that creates the ledger
// table. Its ledger record is never deleted: removing it would require
// the ledger to outlive its own drop statement.
const BootstrapName = "initial"

// Bootstrap returns the migration that creates the ledger table. The
// runner always executes it first, before any caller-supplied
// migration.
func Bootstrap() Migration {
	return New(BootstrapName).
		WithUp(`CREATE TABLE migrations (
    name TEXT NOT NULL PRIMARY KEY,
    executed_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`).
		WithDown(`DROP TABLE IF EXISTS migrations`)
}
