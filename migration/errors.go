package migration

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFilename         = errors.New("invalid migration file name")
	ErrNumberOutOfRange        = errors.New("migration number is out of range")
	ErrMissingMigration        = errors.New("migration is missing")
	ErrIncompleteMigrationPair = errors.New("migration is missing its up or down file")
	ErrNameMismatch            = errors.New("migration up and down names differ")
	ErrDuplicateMigrationFile  = errors.New("migration file is duplicated")
)

type MissingMigrationError struct {
	Number int
}

func (e *MissingMigrationError) Error() string {
	return fmt.Sprintf("files for migration %d are missing", e.Number)
}

func (e *MissingMigrationError) Is(target error) bool {
	return target == ErrMissingMigration
}

type IncompleteMigrationPairError struct {
	Number int
}

func (e *IncompleteMigrationPairError) Error() string {
	return fmt.Sprintf("migration %d is missing its up or down file", e.Number)
}

func (e *IncompleteMigrationPairError) Is(target error) bool {
	return target == ErrIncompleteMigrationPair
}

type NameMismatchError struct {
	Number   int
	UpName   string
	DownName string
}

func (e *NameMismatchError) Error() string {
	return fmt.Sprintf(
		"migration %d has up file named \"%s\" and down file named \"%s\"",
		e.Number,
		e.UpName,
		e.DownName,
	)
}

func (e *NameMismatchError) Is(target error) bool {
	return target == ErrNameMismatch
}

type DuplicateMigrationFileError struct {
	Number    int
	Direction Direction
}

func (e *DuplicateMigrationFileError) Error() string {
	return fmt.Sprintf("migration %d has more than one %s file", e.Number, e.Direction)
}

func (e *DuplicateMigrationFileError) Is(target error) bool {
	return target == ErrDuplicateMigrationFile
}
