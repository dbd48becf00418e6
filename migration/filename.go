package migration

import (
	"fmt"
	"regexp"
	"strconv"
)

var fileNamePattern = regexp.MustCompile(
	`^(?P<number>[0-9]{4})\.(?P<name>[_0-9a-zA-Z]*)\.(?P<direction>up|down)\.sql$`,
)

// FileName is the parsed form of a migration file name, e.g. "0001.init.up.sql".
type FileName struct {
	Number    int
	Name      string
	Direction Direction
}

func ParseFileName(fileName string) (FileName, error) {
	match := fileNamePattern.FindStringSubmatch(fileName)
	if match == nil {
		return FileName{}, fmt.Errorf("%w: %s", ErrInvalidFilename, fileName)
	}

	// the grammar guarantees exactly four digits
	number, err := strconv.Atoi(match[1])
	if err != nil {
		return FileName{}, fmt.Errorf("%w: %s", ErrInvalidFilename, fileName)
	}

	direction := Up
	if match[3] == "down" {
		direction = Down
	}

	return FileName{
		Number:    number,
		Name:      match[2],
		Direction: direction,
	}, nil
}

// String formats the canonical file name. Numbers above MaxNumber are written
// with as many digits as they need and will not parse back; see Validate.
func (f FileName) String() string {
	return fmt.Sprintf("%04d.%s.%s.sql", f.Number, f.Name, f.Direction)
}

// Validate checks that the file name survives a round trip through ParseFileName.
func (f FileName) Validate() error {
	if f.Number < 0 || f.Number > MaxNumber {
		return fmt.Errorf("%w: %d is not within [0, %d]", ErrNumberOutOfRange, f.Number, MaxNumber)
	}

	formatted := f.String()
	parsed, err := ParseFileName(formatted)
	if err != nil {
		return err
	}

	if parsed != f {
		return fmt.Errorf("%w: %s does not round-trip", ErrInvalidFilename, formatted)
	}

	return nil
}
