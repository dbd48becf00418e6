package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/root-talis/dbmigrate/internal/config"
)

const defaultLevel = zerolog.InfoLevel

// NewLogger writes to stderr so that command output on stdout stays clean.
func NewLogger(cfg config.Config) (zerolog.Logger, error) {
	return newLogger(os.Stderr, cfg)
}

func newLogger(out io.Writer, cfg config.Config) (zerolog.Logger, error) {
	level := defaultLevel
	if cfg.Logging.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to parse log level '%s': %w", cfg.Logging.Level, err)
		}

		level = l
	}

	if cfg.Logging.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).
		With().
		Timestamp().
		Logger().
		Level(level)

	return logger, nil
}

// Fatal calls Fatal on the default zerolog logger. It's intended for failures
// that happen before the configured logger exists.
func Fatal(err error, msg string) {
	logger := fallbackLogger()
	logger.Fatal().
		Err(err).
		Msg(msg)
}

func fallbackLogger() zerolog.Logger {
	return log.With().
		Timestamp().
		Logger()
}
