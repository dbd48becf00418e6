package dbmigrate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/root-talis/dbmigrate/driver"
	"github.com/root-talis/dbmigrate/migration"
	"github.com/root-talis/dbmigrate/source"
)

// ---

type Migrator interface {
	Status(ctx context.Context) (*StatusReport, error)
	Up(ctx context.Context) error
	Down(ctx context.Context) error
	Redo(ctx context.Context) error
	Revert(ctx context.Context) error
	Create(slug string) ([]string, error)
}

type StatusEntry struct {
	Number  int
	Name    string
	Applied bool
	Current bool
}

type StatusReport struct {
	Current      int
	Migrations   []StatusEntry
	AppliedCount uint
	PendingCount uint
}

// NothingApplied reports whether the store has not run any migration yet.
func (r *StatusReport) NothingApplied() bool {
	return r.Current == 0
}

// ---

type Option func(*migrator)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *migrator) {
		m.logger = logger
	}
}

type migrator struct {
	source source.Source
	driver driver.Driver
	logger zerolog.Logger
}

// ---

func New(source source.Source, driver driver.Driver, opts ...Option) Migrator {
	m := &migrator{
		source: source,
		driver: driver,
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.logger = m.logger.With().Str("component", "migrator").Logger()

	return m
}

// ---

func (m *migrator) Status(ctx context.Context) (*StatusReport, error) {
	migrations, current, err := m.prepare(ctx)
	if err != nil {
		return nil, err
	}

	report := StatusReport{
		Current:    current,
		Migrations: make([]StatusEntry, 0, migrations.Len()),
	}

	for _, mig := range migrations.Ascending() {
		applied := mig.Number <= current
		if applied {
			report.AppliedCount++
		} else {
			report.PendingCount++
		}

		report.Migrations = append(report.Migrations, StatusEntry{
			Number:  mig.Number,
			Name:    mig.Name,
			Applied: applied,
			Current: mig.Number == current,
		})
	}

	return &report, nil
}

func (m *migrator) Up(ctx context.Context) error {
	migrations, current, err := m.prepareInRange(ctx)
	if err != nil {
		return err
	}

	if current == migrations.Last() {
		m.logger.Info().Int("current", current).Msg("migrations are up-to-date")
		return nil
	}

	for _, mig := range migrations.Ascending() {
		if mig.Number <= current {
			continue
		}
		if err := m.step(ctx, mig, migration.Up); err != nil {
			return err
		}
	}

	return nil
}

func (m *migrator) Down(ctx context.Context) error {
	migrations, current, err := m.prepareInRange(ctx)
	if err != nil {
		return err
	}

	if current == 0 {
		m.logger.Info().Msg("no down migrations to run")
		return nil
	}

	for _, mig := range migrations.Descending() {
		if mig.Number > current {
			continue
		}
		if err := m.step(ctx, mig, migration.Down); err != nil {
			return err
		}
	}

	return nil
}

func (m *migrator) Redo(ctx context.Context) error {
	migrations, current, err := m.prepareInRange(ctx)
	if err != nil {
		return err
	}

	if current == 0 {
		m.logger.Info().Msg("no migration to redo")
		return nil
	}

	mig, _ := migrations.Get(current)

	if err := m.step(ctx, mig, migration.Down); err != nil {
		return err
	}

	return m.step(ctx, mig, migration.Up)
}

func (m *migrator) Revert(ctx context.Context) error {
	migrations, current, err := m.prepareInRange(ctx)
	if err != nil {
		return err
	}

	if current == 0 {
		m.logger.Info().Msg("no migration to revert")
		return nil
	}

	mig, _ := migrations.Get(current)

	return m.step(ctx, mig, migration.Down)
}

// Create adds empty up and down files for the migration following the last one.
func (m *migrator) Create(slug string) ([]string, error) {
	migrations, err := m.source.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	up := migration.FileName{
		Number:    migrations.Last() + 1,
		Name:      strings.ReplaceAll(slug, " ", "_"),
		Direction: migration.Up,
	}
	down := up
	down.Direction = migration.Down

	for _, fileName := range []migration.FileName{up, down} {
		if err := fileName.Validate(); err != nil {
			return nil, fmt.Errorf("cannot create migration \"%s\": %w", slug, err)
		}
	}

	paths, err := m.source.Create(up, down)
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		m.logger.Info().Str("path", path).Msg("created migration file")
	}

	return paths, nil
}

// ---

func (m *migrator) prepare(ctx context.Context) (*migration.Migrations, int, error) {
	migrations, err := m.source.Load()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load migrations: %w", err)
	}

	current, err := m.driver.CurrentVersion(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read current version: %w", err)
	}

	return migrations, current, nil
}

func (m *migrator) prepareInRange(ctx context.Context) (*migration.Migrations, int, error) {
	migrations, current, err := m.prepare(ctx)
	if err != nil {
		return nil, 0, err
	}

	if current < 0 || current > migrations.Last() {
		return nil, 0, &VersionOutOfRangeError{Current: current, Latest: migrations.Last()}
	}

	return migrations, current, nil
}

func (m *migrator) step(ctx context.Context, mig migration.Migration, direction migration.Direction) error {
	resultingVersion := mig.Number
	if direction == migration.Down {
		resultingVersion = mig.Number - 1
	}

	logger := m.logger.With().
		Int("migration", mig.Number).
		Str("name", mig.Name).
		Stringer("direction", direction).
		Logger()

	logger.Info().Msg("running migration")
	start := time.Now()

	if err := m.driver.Migrate(ctx, mig.Script(direction), resultingVersion); err != nil {
		logger.Err(err).Msg("migration failed, stopping")
		return &MigrationError{
			Number:    mig.Number,
			Name:      mig.Name,
			Direction: direction,
			Err:       err,
		}
	}

	logger.Info().
		Dur("duration", time.Since(start)).
		Int("current", resultingVersion).
		Msg("migration done")

	return nil
}
