package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/root-talis/dbmigrate/driver"
)

// DriverName is the database/sql driver name the connection must be opened with.
const DriverName = "sqlite"

type DriverConfig struct {
	TableName string
}

type sqliteDriver struct {
	conn      *sqlx.DB
	tableName string
}

// Open opens a database file and prepares the version register in it.
func Open(ctx context.Context, path string, config DriverConfig) (driver.Driver, *sqlx.DB, error) {
	conn, err := sqlx.Open(DriverName, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	// a single connection keeps the database file consistent between statements
	conn.SetMaxOpenConns(1)

	drv, err := NewDriver(ctx, conn, config)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	return drv, conn, nil
}

func NewDriver(ctx context.Context, conn *sqlx.DB, config DriverConfig) (driver.Driver, error) {
	if config.TableName == "" {
		config.TableName = driver.DefaultTableName
	}

	drv := &sqliteDriver{
		conn:      conn,
		tableName: quoteIdentifier(config.TableName),
	}

	if err := drv.EnsureSchemaExists(ctx); err != nil {
		return nil, err
	}

	return drv, nil
}

func (drv *sqliteDriver) EnsureSchemaExists(ctx context.Context) error {
	_, err := drv.conn.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id INTEGER, current INTEGER)",
		drv.tableName,
	))
	if err != nil {
		return fmt.Errorf("failed to create version table %s: %w", drv.tableName, err)
	}

	_, err = drv.conn.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (id, current) "+
			"SELECT 1, 0 "+
			"WHERE NOT EXISTS (SELECT 1 FROM %s WHERE id = 1)",
		drv.tableName,
		drv.tableName,
	))
	if err != nil {
		return fmt.Errorf("failed to seed version table %s: %w", drv.tableName, err)
	}

	return nil
}

func (drv *sqliteDriver) CurrentVersion(ctx context.Context) (int, error) {
	var current int

	err := drv.conn.GetContext(ctx, &current, fmt.Sprintf(
		"SELECT current FROM %s WHERE id = 1",
		drv.tableName,
	))

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("%w: %w in %s", driver.ErrVersionStore, driver.ErrVersionRowMissing, drv.tableName)
	case err != nil:
		return 0, fmt.Errorf("%w: %w", driver.ErrVersionStore, err)
	}

	return current, nil
}

func (drv *sqliteDriver) SetCurrentVersion(ctx context.Context, version int) error {
	return drv.setCurrentVersion(ctx, drv.conn, version)
}

// Migrate runs the script and records the version in one transaction.
func (drv *sqliteDriver) Migrate(ctx context.Context, script string, resultingVersion int) error {
	tx, err := drv.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("migration script failed: %w", err)
	}

	if err := drv.setCurrentVersion(ctx, tx, resultingVersion); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}

func (drv *sqliteDriver) setCurrentVersion(ctx context.Context, conn sqlx.ExecerContext, version int) error {
	result, err := conn.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s SET current = ? WHERE id = 1",
		drv.tableName,
	), version)
	if err != nil {
		return fmt.Errorf("%w: %w", driver.ErrVersionStore, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", driver.ErrVersionStore, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %w in %s", driver.ErrVersionStore, driver.ErrVersionRowMissing, drv.tableName)
	}

	return nil
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
