package migration

type Direction rune

const (
	Down Direction = 'd'
	Up   Direction = 'u'
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// ---

// MaxNumber is the highest migration number the file name grammar can express.
const MaxNumber = 9999

type Migration struct {
	Number int
	Name   string
	Up     string
	Down   string
}

// Script returns the script that moves the store in the given direction.
func (m Migration) Script(direction Direction) string {
	if direction == Down {
		return m.Down
	}
	return m.Up
}

// ---

// Migrations is an immutable collection of migrations numbered 1..N.
type Migrations struct {
	items []Migration
}

func (m *Migrations) Len() int {
	if m == nil {
		return 0
	}
	return len(m.items)
}

// Last returns the highest migration number, or 0 for an empty collection.
func (m *Migrations) Last() int {
	return m.Len()
}

func (m *Migrations) Get(number int) (Migration, bool) {
	if number < 1 || number > m.Len() {
		return Migration{}, false
	}
	return m.items[number-1], true
}

// Ascending returns a copy of the migrations ordered by number.
func (m *Migrations) Ascending() []Migration {
	result := make([]Migration, m.Len())
	if m != nil {
		copy(result, m.items)
	}
	return result
}

// Descending returns a copy of the migrations ordered from the highest number down.
func (m *Migrations) Descending() []Migration {
	n := m.Len()
	result := make([]Migration, n)
	for i := 0; i < n; i++ {
		result[i] = m.items[n-1-i]
	}
	return result
}
