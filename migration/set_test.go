package migration_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/root-talis/dbmigrate/migration"
)

type file struct {
	name    string
	content string
}

var setBuilderTestTable = []struct { // nolint:gochecknoglobals
	name          string
	files         []file
	expected      []migration.Migration
	expectedError error
}{
	// -- success tests ------
	/* s0 */ {
		name:     "test s0: should build an empty set",
		files:    []file{},
		expected: []migration.Migration{},
	},
	/* s1 */ {
		name: "test s1: should pair files regardless of order",
		files: []file{
			{"0002.add_users.down.sql", "DROP TABLE users;"},
			{"0001.init.up.sql", "CREATE TABLE init (id int);"},
			{"0002.add_users.up.sql", "CREATE TABLE users (id int);"},
			{"0001.init.down.sql", "DROP TABLE init;"},
		},
		expected: []migration.Migration{
			{Number: 1, Name: "init", Up: "CREATE TABLE init (id int);", Down: "DROP TABLE init;"},
			{Number: 2, Name: "add_users", Up: "CREATE TABLE users (id int);", Down: "DROP TABLE users;"},
		},
	},
	/* s2 */ {
		name: "test s2: should accept empty names",
		files: []file{
			{"0001..up.sql", "up"},
			{"0001..down.sql", "down"},
		},
		expected: []migration.Migration{
			{Number: 1, Name: "", Up: "up", Down: "down"},
		},
	},

	// -- error tests --------
	/* e0 */ {
		name: "test e0: should fail on a gap",
		files: []file{
			{"0001.a.up.sql", ""}, {"0001.a.down.sql", ""},
			{"0003.c.up.sql", ""}, {"0003.c.down.sql", ""},
		},
		expectedError: &migration.MissingMigrationError{Number: 2},
	},
	/* e1 */ {
		name: "test e1: should fail when numbering does not start at 1",
		files: []file{
			{"0002.b.up.sql", ""}, {"0002.b.down.sql", ""},
		},
		expectedError: &migration.MissingMigrationError{Number: 1},
	},
	/* e2 */ {
		name: "test e2: should fail on a missing down file",
		files: []file{
			{"0001.a.up.sql", ""},
		},
		expectedError: &migration.IncompleteMigrationPairError{Number: 1},
	},
	/* e3 */ {
		name: "test e3: should fail on a missing up file",
		files: []file{
			{"0001.a.up.sql", ""}, {"0001.a.down.sql", ""},
			{"0002.b.down.sql", ""},
		},
		expectedError: &migration.IncompleteMigrationPairError{Number: 2},
	},
	/* e4 */ {
		name: "test e4: should fail on name mismatch",
		files: []file{
			{"0001.a.up.sql", ""}, {"0001.b.down.sql", ""},
		},
		expectedError: &migration.NameMismatchError{Number: 1, UpName: "a", DownName: "b"},
	},
	/* e5 */ {
		name: "test e5: should report the gap before an incomplete pair",
		files: []file{
			{"0001.a.up.sql", ""},
			{"0003.c.up.sql", ""}, {"0003.c.down.sql", ""},
		},
		expectedError: &migration.MissingMigrationError{Number: 2},
	},
}

func TestSetBuilder(t *testing.T) {
	t.Parallel()

	for _, test := range setBuilderTestTable {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			builder := migration.NewSetBuilder()
			for _, f := range test.files {
				fileName, err := migration.ParseFileName(f.name)
				require.NoError(t, err)
				require.NoError(t, builder.Add(fileName, f.content))
			}

			migrations, err := builder.Build()

			if test.expectedError != nil {
				assert.Equal(t, test.expectedError, err)
				assert.Nil(t, migrations)
				return
			}

			if assert.NoError(t, err) {
				assert.Equal(t, test.expected, migrations.Ascending())
				assert.Equal(t, len(test.expected), migrations.Len())
			}
		})
	}
}

func TestSetBuilderErrorsMatchSentinels(t *testing.T) {
	t.Parallel()

	var err error = &migration.MissingMigrationError{Number: 2}
	assert.ErrorIs(t, err, migration.ErrMissingMigration)

	err = &migration.IncompleteMigrationPairError{Number: 1}
	assert.ErrorIs(t, err, migration.ErrIncompleteMigrationPair)

	err = &migration.NameMismatchError{Number: 1, UpName: "a", DownName: "b"}
	assert.ErrorIs(t, err, migration.ErrNameMismatch)
	assert.Contains(t, err.Error(), "\"a\"")

	var mismatch *migration.NameMismatchError
	if assert.True(t, errors.As(err, &mismatch)) {
		assert.Equal(t, "b", mismatch.DownName)
	}
}

func TestSetBuilderRejectsDuplicates(t *testing.T) {
	t.Parallel()

	builder := migration.NewSetBuilder()
	require.NoError(t, builder.Add(migration.FileName{Number: 1, Name: "a", Direction: migration.Up}, "one"))

	err := builder.Add(migration.FileName{Number: 1, Name: "b", Direction: migration.Up}, "two")

	assert.ErrorIs(t, err, migration.ErrDuplicateMigrationFile)
	assert.Equal(t, &migration.DuplicateMigrationFileError{Number: 1, Direction: migration.Up}, err)
}

func TestSetBuilderRejectsUnknownDirection(t *testing.T) {
	t.Parallel()

	builder := migration.NewSetBuilder()

	err := builder.Add(migration.FileName{Number: 1, Name: "a", Direction: migration.Direction('x')}, "")
	assert.ErrorIs(t, err, migration.ErrInvalidFilename)

	migrations, err := builder.Build()
	require.NoError(t, err)
	assert.Equal(t, 0, migrations.Len())
}

func TestMigrationsOrdering(t *testing.T) {
	t.Parallel()

	migrations, err := migration.NewMigrations(
		migration.Migration{Number: 1, Name: "a", Up: "u1", Down: "d1"},
		migration.Migration{Number: 2, Name: "b", Up: "u2", Down: "d2"},
		migration.Migration{Number: 3, Name: "c", Up: "u3", Down: "d3"},
	)
	require.NoError(t, err)

	numbers := func(items []migration.Migration) []int {
		result := make([]int, 0, len(items))
		for _, item := range items {
			result = append(result, item.Number)
		}
		return result
	}

	assert.Equal(t, []int{1, 2, 3}, numbers(migrations.Ascending()))
	assert.Equal(t, []int{3, 2, 1}, numbers(migrations.Descending()))
	assert.Equal(t, 3, migrations.Last())

	second, ok := migrations.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "u2", second.Script(migration.Up))
	assert.Equal(t, "d2", second.Script(migration.Down))

	_, ok = migrations.Get(0)
	assert.False(t, ok)
	_, ok = migrations.Get(4)
	assert.False(t, ok)

	var empty *migration.Migrations
	assert.Equal(t, 0, empty.Last())
	assert.Empty(t, empty.Ascending())
}
