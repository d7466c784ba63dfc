package migration

// Mode selects how the runner treats a migration on each run.
type Mode uint8

const (
	// Stable migrations apply once and are skipped afterwards.
	Stable Mode = iota

	// Debug migrations are rolled back and re-applied on every run.
	Debug

	// NuclearDebug forces a full rollback and re-apply of every
	// migration in the run, not just this one.
	NuclearDebug
)

// ---

// Migration is a named, ordered unit of schema change. Values are
// immutable; the With* builders return modified copies.
type Migration struct {
	Name string
	Up   []string
	Down []string
	Mode Mode
}

// ---

type Status uint

const (
	Pending Status = iota
	Applied
	Missing
)

// State describes one migration's standing against the ledger.
type State struct {
	Name   string
	Mode   Mode
	Status Status
}
