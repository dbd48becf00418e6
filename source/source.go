package source

import (
	"github.com/root-talis/dbmigrate/migration"
)

// Source provides the set of migrations available for a command and a place
// to put new ones.
type Source interface {
	Load() (*migration.Migrations, error)
	Create(up, down migration.FileName) ([]string, error)
}
