package driver

import (
	"context"
	"errors"
)

// DefaultTableName is the bookkeeping table every backend keeps its version register in.
const DefaultTableName = "__dbmigrate_table"

// Driver executes migration scripts against a data store and persists the
// number of the last applied migration.
//
// Implementations create the bookkeeping structure when they are constructed.
// Migrate must record resultingVersion only if the script succeeds.
type Driver interface {
	EnsureSchemaExists(ctx context.Context) error
	CurrentVersion(ctx context.Context) (int, error)
	SetCurrentVersion(ctx context.Context, version int) error
	Migrate(ctx context.Context, script string, resultingVersion int) error
}

var (
	ErrVersionStore      = errors.New("failed to access the version register")
	ErrVersionRowMissing = errors.New("version register row is missing")
)
