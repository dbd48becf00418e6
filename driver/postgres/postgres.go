package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/root-talis/dbmigrate/driver"
)

// DriverConfig describes where the version register lives. An empty SchemaName
// resolves the table through the connection's search_path.
type DriverConfig struct {
	SchemaName string
	TableName  string
}

type postgresDriver struct {
	conn      *pgx.Conn
	tableName string
}

// NewDriver prepares the version register on conn.
func NewDriver(ctx context.Context, conn *pgx.Conn, config DriverConfig) (driver.Driver, error) {
	if config.TableName == "" {
		config.TableName = driver.DefaultTableName
	}

	identifier := pgx.Identifier{config.TableName}
	if config.SchemaName != "" {
		identifier = pgx.Identifier{config.SchemaName, config.TableName}
	}

	drv := &postgresDriver{
		conn:      conn,
		tableName: identifier.Sanitize(),
	}

	if err := drv.EnsureSchemaExists(ctx); err != nil {
		return nil, err
	}

	return drv, nil
}

func (drv *postgresDriver) EnsureSchemaExists(ctx context.Context) error {
	_, err := drv.conn.Exec(ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id INTEGER, current INTEGER)",
		drv.tableName,
	))
	if err != nil {
		return fmt.Errorf("failed to create version table %s: %w", drv.tableName, err)
	}

	_, err = drv.conn.Exec(ctx, fmt.Sprintf(
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

func (drv *postgresDriver) CurrentVersion(ctx context.Context) (int, error) {
	var current int

	err := drv.conn.QueryRow(ctx, fmt.Sprintf(
		"SELECT current FROM %s WHERE id = 1",
		drv.tableName,
	)).Scan(&current)

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return 0, fmt.Errorf("%w: %w in %s", driver.ErrVersionStore, driver.ErrVersionRowMissing, drv.tableName)
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable:
		return 0, fmt.Errorf("%w: table %s does not exist: %w", driver.ErrVersionStore, drv.tableName, err)
	case err != nil:
		return 0, fmt.Errorf("%w: %w", driver.ErrVersionStore, err)
	}

	return current, nil
}

func (drv *postgresDriver) SetCurrentVersion(ctx context.Context, version int) error {
	return drv.setCurrentVersion(ctx, drv.conn, version)
}

// Migrate runs the script and records the version in one transaction, so a
// failing script leaves neither its changes nor a new version behind.
func (drv *postgresDriver) Migrate(ctx context.Context, script string, resultingVersion int) error {
	tx, err := drv.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// no-op once committed
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, script); err != nil {
		return fmt.Errorf("migration script failed: %w", err)
	}

	if err := drv.setCurrentVersion(ctx, tx, resultingVersion); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (drv *postgresDriver) setCurrentVersion(ctx context.Context, conn execer, version int) error {
	tag, err := conn.Exec(ctx, fmt.Sprintf(
		"UPDATE %s SET current = $1 WHERE id = 1",
		drv.tableName,
	), version)
	if err != nil {
		return fmt.Errorf("%w: %w", driver.ErrVersionStore, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %w in %s", driver.ErrVersionStore, driver.ErrVersionRowMissing, drv.tableName)
	}

	return nil
}
