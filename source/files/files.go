package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/root-talis/dbmigrate/migration"
	"github.com/root-talis/dbmigrate/source"
)

var (
	ErrMigrationsDirectoryIsNotADirectory = errors.New("migrations directory is not a directory")
	ErrDirectoryRead                      = errors.New("failed to read migrations directory")
	ErrFileRead                           = errors.New("failed to read migration file")
	ErrFileCreate                         = errors.New("failed to create migration file")
)

type filesSource struct {
	fs            afero.Fs
	migrationsDir string
}

var _ source.Source = (*filesSource)(nil)

func NewFilesSource(fs afero.Fs, migrationsDirectory string) (source.Source, error) {
	stat, err := fs.Stat(migrationsDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to stat migrations directory: %w", err)
	}

	if !stat.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMigrationsDirectoryIsNotADirectory, migrationsDirectory)
	}

	return &filesSource{
		fs:            fs,
		migrationsDir: migrationsDirectory,
	}, nil
}

// Load reads every file of the migrations directory whose name follows the
// migration grammar. Other entries are ignored.
func (src *filesSource) Load() (*migration.Migrations, error) {
	entries, err := afero.ReadDir(src.fs, src.migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDirectoryRead, src.migrationsDir, err)
	}

	builder := migration.NewSetBuilder()
	for _, entry := range entries {
		if entry.IsDir() || !entry.Mode().IsRegular() {
			continue
		}

		fileName, err := migration.ParseFileName(entry.Name())
		if err != nil {
			continue
		}

		content, err := src.readFile(entry.Name())
		if err != nil {
			return nil, err
		}

		if err := builder.Add(fileName, content); err != nil {
			return nil, fmt.Errorf("failed to parse directory entries: %w", err)
		}
	}

	migrations, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("invalid migrations in %s: %w", src.migrationsDir, err)
	}

	return migrations, nil
}

func (src *filesSource) readFile(name string) (string, error) {
	path := filepath.Join(src.migrationsDir, name)

	content, err := afero.ReadFile(src.fs, path)
	if err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrFileRead, path, err)
	}

	return string(content), nil
}

// Create makes two empty files for a new migration. Existing files are never
// overwritten.
func (src *filesSource) Create(up, down migration.FileName) ([]string, error) {
	upPath, err := src.createEmptyFile(up)
	if err != nil {
		return nil, err
	}

	downPath, err := src.createEmptyFile(down)
	if err != nil {
		if rmErr := src.fs.Remove(upPath); rmErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to remove %s: %w", upPath, rmErr))
		}
		return nil, err
	}

	return []string{upPath, downPath}, nil
}

func (src *filesSource) createEmptyFile(fileName migration.FileName) (string, error) {
	const perm = 0o644

	path := filepath.Join(src.migrationsDir, fileName.String())

	file, err := src.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrFileCreate, path, err)
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrFileCreate, path, err)
	}

	return path, nil
}
