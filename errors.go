package dbmigrate

import (
	"errors"
	"fmt"

	"github.com/root-talis/dbmigrate/migration"
)

var (
	ErrMigrationFailed   = errors.New("migration failed")
	ErrVersionOutOfRange = errors.New("current version is not in the migration set")
)

// MigrationError is returned when the driver fails to apply a migration script.
type MigrationError struct {
	Number    int
	Name      string
	Direction migration.Direction
	Err       error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("%s migration #%d (%s) failed: %s", e.Direction, e.Number, e.Name, e.Err)
}

func (e *MigrationError) Unwrap() []error {
	return []error{ErrMigrationFailed, e.Err}
}

// VersionOutOfRangeError is returned when the store records a version that
// has no migration on disk.
type VersionOutOfRangeError struct {
	Current int
	Latest  int
}

func (e *VersionOutOfRangeError) Error() string {
	return fmt.Sprintf("current version %d is outside of the available migrations 0..%d", e.Current, e.Latest)
}

func (e *VersionOutOfRangeError) Is(target error) bool {
	return target == ErrVersionOutOfRange
}
