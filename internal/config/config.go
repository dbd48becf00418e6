package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/root-talis/dbmigrate/driver"
)

type Logging struct {
	Level  string `koanf:"level" json:"level,omitempty"`
	Pretty bool   `koanf:"pretty" json:"pretty,omitempty"`
}

func (l Logging) validate() []error {
	var errs []error
	if _, err := zerolog.ParseLevel(l.Level); err != nil {
		errs = append(errs, fmt.Errorf("level: invalid log level %q: %w", l.Level, err))
	}
	return errs
}

var loggingDefault = Logging{
	Level: "info",
}

type Config struct {
	URL     string  `koanf:"url" json:"url,omitempty" validate:"omitempty,url"`
	Path    string  `koanf:"path" json:"path,omitempty" validate:"required"`
	Table   string  `koanf:"table" json:"table,omitempty" validate:"required,max=64"`
	Logging Logging `koanf:"logging" json:"logging,omitempty"`
}

func (c Config) Validate() error {
	var errs []error

	err := validator.New().Struct(c)

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		for _, fieldErr := range validationErrs {
			errs = append(errs, fmt.Errorf("%s: failed on the '%s' rule", strings.ToLower(fieldErr.Field()), fieldErr.Tag()))
		}
	case err != nil:
		errs = append(errs, err)
	}

	for _, err := range c.Logging.validate() {
		errs = append(errs, fmt.Errorf("logging.%w", err))
	}

	return errors.Join(errs...)
}

func DefaultConfig() Config {
	return Config{
		Path:    "./migrations",
		Table:   driver.DefaultTableName,
		Logging: loggingDefault,
	}
}
