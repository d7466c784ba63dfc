package migration

import "fmt"

// debugBuilds gates the Debug and NuclearDebug builders. It is off by
// default so that debug-mode migrations cannot survive into a release
// build; development entry points opt in explicitly.
var debugBuilds = false

// EnableDebugBuilds allows Debug and NuclearDebug migration modes for
// the rest of the process lifetime. Call it only from development
// bootstrap code.
func EnableDebugBuilds() {
	debugBuilds = true
}

// ---

// New creates an empty Stable migration. The name is the migration's
// permanent historical key and must never be reused for a different
// change once deployed.
func New(name string) Migration {
	if name == "" {
		panic("migration: name must not be empty")
	}
	return Migration{Name: name}
}

// WithUp appends a statement to the forward list. Statements execute
// in the order they were added.
func (m Migration) WithUp(statement string) Migration {
	m.Up = append(m.Up[:len(m.Up):len(m.Up)], statement)
	return m
}

// WithDown prepends a statement to the reverse list. Callers add down
// statements in the same narrative order as their up counterparts;
// prepending makes the stored list execute in exact reverse.
func (m Migration) WithDown(statement string) Migration {
	down := make([]string, 0, len(m.Down)+1)
	down = append(down, statement)
	down = append(down, m.Down...)
	m.Down = down
	return m
}

// Debug marks the migration for rollback-then-reapply on every run.
// Panics unless EnableDebugBuilds was called.
func (m Migration) Debug() Migration {
	mustAllowDebug(m.Name)
	m.Mode = Debug
	return m
}

// NuclearDebug marks the whole run for a full rollback and re-apply.
// Panics unless EnableDebugBuilds was called.
func (m Migration) NuclearDebug() Migration {
	mustAllowDebug(m.Name)
	m.Mode = NuclearDebug
	return m
}

func mustAllowDebug(name string) {
	if !debugBuilds {
		panic(fmt.Sprintf("migration %q: debug modes are not enabled in this build", name))
	}
}
