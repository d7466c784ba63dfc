package stratum

import "fmt"

// MigrationError is the single error kind produced by a run. It names
// the exact statement that failed and carries the driver error.
// Transaction begin and commit failures report the pseudo-statements
// "BEGIN TRANSACTION" and "COMMIT TRANSACTION".
type MigrationError struct {
	Statement string
	Err       error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("error executing sql %q: %v", e.Statement, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}
