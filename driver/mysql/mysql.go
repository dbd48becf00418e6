package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/root-talis/dbmigrate/driver"
)

// DriverConfig describes where the version register lives. DatabaseName may be
// empty, in which case the table is resolved against the connection's default schema.
type DriverConfig struct {
	DatabaseName string
	TableName    string
}

type mysqlDriver struct {
	conn      *sql.DB
	tableName string
}

// NewDriver prepares the version register on conn. Scripts containing several
// statements need a connection opened with multiStatements=true.
func NewDriver(ctx context.Context, conn *sql.DB, config DriverConfig) (driver.Driver, error) {
	if config.TableName == "" {
		config.TableName = driver.DefaultTableName
	}

	drv := &mysqlDriver{
		conn:      conn,
		tableName: makeEscapedTableName(config),
	}

	if err := drv.EnsureSchemaExists(ctx); err != nil {
		return nil, err
	}

	return drv, nil
}

func (drv *mysqlDriver) EnsureSchemaExists(ctx context.Context) error {
	_, err := drv.conn.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id INTEGER, current INTEGER)",
		drv.tableName,
	))
	if err != nil {
		return fmt.Errorf("failed to create version table %s: %w", drv.tableName, err)
	}

	_, err = drv.conn.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (id, current) "+
			"SELECT 1, 0 FROM DUAL "+
			"WHERE NOT EXISTS (SELECT * FROM %s WHERE id = 1)",
		drv.tableName,
		drv.tableName,
	))
	if err != nil {
		return fmt.Errorf("failed to seed version table %s: %w", drv.tableName, err)
	}

	return nil
}

func (drv *mysqlDriver) CurrentVersion(ctx context.Context) (int, error) {
	var current int

	err := drv.conn.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT current FROM %s WHERE id = 1",
		drv.tableName,
	)).Scan(&current)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("%w: %w in %s", driver.ErrVersionStore, driver.ErrVersionRowMissing, drv.tableName)
	case err != nil:
		return 0, fmt.Errorf("%w: %w", driver.ErrVersionStore, err)
	}

	return current, nil
}

func (drv *mysqlDriver) SetCurrentVersion(ctx context.Context, version int) error {
	result, err := drv.conn.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s SET current = ? WHERE id = 1",
		drv.tableName,
	), version)
	if err != nil {
		return fmt.Errorf("%w: %w", driver.ErrVersionStore, err)
	}

	// MySQL reports 0 affected rows when the value does not change, so only an
	// actually missing row is an error.
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		if _, err := drv.CurrentVersion(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Migrate runs the script and then records the version. MySQL commits DDL
// implicitly, so a failing script may leave partial changes behind.
func (drv *mysqlDriver) Migrate(ctx context.Context, script string, resultingVersion int) error {
	if _, err := drv.conn.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("migration script failed: %w", err)
	}

	return drv.SetCurrentVersion(ctx, resultingVersion)
}

func makeEscapedTableName(config DriverConfig) string {
	if config.DatabaseName == "" {
		return quoteIdentifier(config.TableName)
	}

	return quoteIdentifier(config.DatabaseName) + "." + quoteIdentifier(config.TableName)
}

// quoteIdentifier wraps name in backticks. Backticks inside it are doubled,
// everything else is literal within a quoted identifier.
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
