package migration

import (
	"fmt"
	"sort"
)

type migrationSide struct {
	name    string
	content string
}

type partialMigration struct {
	up   *migrationSide
	down *migrationSide
}

// SetBuilder pairs up and down files by number and validates the resulting sequence.
type SetBuilder struct {
	partials map[int]*partialMigration
}

func NewSetBuilder() *SetBuilder {
	return &SetBuilder{
		partials: make(map[int]*partialMigration),
	}
}

// Add registers the content of a single migration file.
func (b *SetBuilder) Add(fileName FileName, content string) error {
	if fileName.Direction != Up && fileName.Direction != Down {
		return fmt.Errorf("%w: unknown direction in %s", ErrInvalidFilename, fileName)
	}

	partial, exists := b.partials[fileName.Number]
	if !exists {
		partial = &partialMigration{}
		b.partials[fileName.Number] = partial
	}

	side := &migrationSide{name: fileName.Name, content: content}

	switch fileName.Direction {
	case Up:
		if partial.up != nil {
			return &DuplicateMigrationFileError{Number: fileName.Number, Direction: Up}
		}
		partial.up = side
	case Down:
		if partial.down != nil {
			return &DuplicateMigrationFileError{Number: fileName.Number, Direction: Down}
		}
		partial.down = side
	}

	return nil
}

// Build checks that the numbers form the sequence 1..N and that every number
// has both files under the same name.
func (b *SetBuilder) Build() (*Migrations, error) {
	numbers := b.sortedNumbers()

	for i, number := range numbers {
		if number != i+1 {
			return nil, &MissingMigrationError{Number: i + 1}
		}
	}

	items := make([]Migration, 0, len(numbers))
	for _, number := range numbers {
		partial := b.partials[number]

		if partial.up == nil || partial.down == nil {
			return nil, &IncompleteMigrationPairError{Number: number}
		}

		if partial.up.name != partial.down.name {
			return nil, &NameMismatchError{
				Number:   number,
				UpName:   partial.up.name,
				DownName: partial.down.name,
			}
		}

		items = append(items, Migration{
			Number: number,
			Name:   partial.up.name,
			Up:     partial.up.content,
			Down:   partial.down.content,
		})
	}

	return &Migrations{items: items}, nil
}

func (b *SetBuilder) sortedNumbers() []int {
	keys := make([]int, 0, len(b.partials))

	for k := range b.partials {
		keys = append(keys, k)
	}

	sort.Ints(keys)

	return keys
}

// NewMigrations builds a collection from already validated migrations.
// The numbers must be exactly 1..len(items) in order.
func NewMigrations(items ...Migration) (*Migrations, error) {
	builder := NewSetBuilder()
	for _, item := range items {
		up := FileName{Number: item.Number, Name: item.Name, Direction: Up}
		down := FileName{Number: item.Number, Name: item.Name, Direction: Down}

		if err := builder.Add(up, item.Up); err != nil {
			return nil, err
		}
		if err := builder.Add(down, item.Down); err != nil {
			return nil, err
		}
	}
	return builder.Build()
}
