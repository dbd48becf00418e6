package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/root-talis/dbmigrate/driver"
	"github.com/root-talis/dbmigrate/driver/sqlite"
)

func openDatabase(t *testing.T, config sqlite.DriverConfig) (driver.Driver, *sqlx.DB) {
	t.Helper()

	drv, conn, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), config)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, conn.Close())
	})

	return drv, conn
}

func TestNewDriver(t *testing.T) {
	t.Parallel()

	t.Run("should create and seed the version table", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		drv, conn := openDatabase(t, sqlite.DriverConfig{})

		current, err := drv.CurrentVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, current)

		var rows int
		require.NoError(t, conn.GetContext(ctx, &rows, `SELECT count(*) FROM "__dbmigrate_table"`))
		assert.Equal(t, 1, rows)
	})

	t.Run("should be idempotent", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		drv, conn := openDatabase(t, sqlite.DriverConfig{TableName: "custom versions"})
		require.NoError(t, drv.SetCurrentVersion(ctx, 4))

		again, err := sqlite.NewDriver(ctx, conn, sqlite.DriverConfig{TableName: "custom versions"})
		require.NoError(t, err)
		require.NoError(t, again.EnsureSchemaExists(ctx))

		current, err := again.CurrentVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, current)

		var rows int
		require.NoError(t, conn.GetContext(ctx, &rows, `SELECT count(*) FROM "custom versions"`))
		assert.Equal(t, 1, rows)
	})

	t.Run("should fail on a version table with bad structure", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		conn, err := sqlx.Open(sqlite.DriverName, filepath.Join(t.TempDir(), "bad.db"))
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.ExecContext(ctx, `CREATE TABLE "__dbmigrate_table" (id INTEGER)`)
		require.NoError(t, err)

		_, err = sqlite.NewDriver(ctx, conn, sqlite.DriverConfig{})
		assert.Error(t, err)
	})
}

func TestMigrate(t *testing.T) {
	t.Parallel()

	t.Run("should run the script and record the version", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		drv, conn := openDatabase(t, sqlite.DriverConfig{})

		err := drv.Migrate(ctx, "CREATE TABLE users (id INTEGER); INSERT INTO users VALUES (7);", 1)
		require.NoError(t, err)

		current, err := drv.CurrentVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, current)

		var id int
		require.NoError(t, conn.GetContext(ctx, &id, "SELECT id FROM users"))
		assert.Equal(t, 7, id)
	})

	t.Run("should roll back a failing script", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		drv, conn := openDatabase(t, sqlite.DriverConfig{})

		err := drv.Migrate(ctx, "CREATE TABLE users (id INTEGER); THIS IS NOT SQL;", 1)
		assert.Error(t, err)

		current, err := drv.CurrentVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, current)

		var tables int
		require.NoError(t, conn.GetContext(ctx, &tables,
			"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'users'"))
		assert.Equal(t, 0, tables)
	})

	t.Run("should report a missing version row", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		drv, conn := openDatabase(t, sqlite.DriverConfig{})

		_, err := conn.ExecContext(ctx, `DELETE FROM "__dbmigrate_table"`)
		require.NoError(t, err)

		_, err = drv.CurrentVersion(ctx)
		assert.ErrorIs(t, err, driver.ErrVersionRowMissing)
		assert.ErrorIs(t, err, driver.ErrVersionStore)

		err = drv.SetCurrentVersion(ctx, 1)
		assert.ErrorIs(t, err, driver.ErrVersionRowMissing)

		err = drv.Migrate(ctx, "CREATE TABLE t (id INTEGER);", 1)
		assert.ErrorIs(t, err, driver.ErrVersionRowMissing)
	})
}
