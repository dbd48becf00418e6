package main

import (
	"context"
	"fmt"

	"github.com/samber/do"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/root-talis/dbmigrate"
	"github.com/root-talis/dbmigrate/internal/backend"
	"github.com/root-talis/dbmigrate/internal/config"
	"github.com/root-talis/dbmigrate/source"
	"github.com/root-talis/dbmigrate/source/files"
)

type runFunc func(ctx context.Context, m dbmigrate.Migrator) error

func runUp(ctx context.Context, m dbmigrate.Migrator) error     { return m.Up(ctx) }
func runDown(ctx context.Context, m dbmigrate.Migrator) error   { return m.Down(ctx) }
func runRedo(ctx context.Context, m dbmigrate.Migrator) error   { return m.Redo(ctx) }
func runRevert(ctx context.Context, m dbmigrate.Migrator) error { return m.Revert(ctx) }

func newMigrateCommand(i *do.Injector, use, short string, run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrator(i, true)
			if err != nil {
				return err
			}

			return run(cmd.Context(), m)
		},
	}
}

func newStatusCommand(i *do.Injector) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List the migrations and show the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrator(i, true)
			if err != nil {
				return err
			}

			report, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.NothingApplied() {
				fmt.Fprintln(out, "No migration has been ran")
			}
			for _, entry := range report.Migrations {
				if entry.Current {
					fmt.Fprintf(out, "%d - %s (current)\n", entry.Number, entry.Name)
				} else {
					fmt.Fprintf(out, "%d - %s\n", entry.Number, entry.Name)
				}
			}

			return nil
		},
	}
}

func newCreateCommand(i *do.Injector) *cobra.Command {
	return &cobra.Command{
		Use:   "create SLUG",
		Short: "Create empty up and down files for a new migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// creating files never touches the database
			m, err := newMigrator(i, false)
			if err != nil {
				return err
			}

			paths, err := m.Create(args[0])
			if err != nil {
				return err
			}

			for _, path := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}

			return nil
		},
	}
}

func newMigrator(i *do.Injector, withBackend bool) (dbmigrate.Migrator, error) {
	cfg, err := do.Invoke[config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	src, err := newSource(i, cfg)
	if err != nil {
		return nil, err
	}

	opts := []dbmigrate.Option{dbmigrate.WithLogger(logger)}

	if !withBackend {
		return dbmigrate.New(src, nil, opts...), nil
	}

	b, err := do.Invoke[*backend.Backend](i)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return dbmigrate.New(src, b.Driver(), opts...), nil
}

func newSource(i *do.Injector, cfg config.Config) (source.Source, error) {
	fs, err := do.Invoke[afero.Fs](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get filesystem: %w", err)
	}

	src, err := files.NewFilesSource(fs, cfg.Path)
	if err != nil {
		return nil, err
	}

	return src, nil
}
