package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/root-talis/dbmigrate/internal/config"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("should default to info", func(t *testing.T) {
		t.Parallel()

		logger, err := newLogger(&bytes.Buffer{}, config.Config{})
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("should write json at the configured level", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		logger, err := newLogger(&out, config.Config{Logging: config.Logging{Level: "warn"}})
		require.NoError(t, err)

		logger.Info().Msg("hidden")
		logger.Warn().Int("migration", 2).Msg("shown")

		assert.NotContains(t, out.String(), "hidden")
		assert.Contains(t, out.String(), `"level":"warn"`)
		assert.Contains(t, out.String(), `"migration":2`)
	})

	t.Run("should write console output when pretty", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		logger, err := newLogger(&out, config.Config{Logging: config.Logging{Pretty: true}})
		require.NoError(t, err)

		logger.Info().Msg("migration done")

		assert.Contains(t, out.String(), "migration done")
		assert.NotContains(t, out.String(), `"message"`)
	})

	t.Run("should reject an unknown level", func(t *testing.T) {
		t.Parallel()

		_, err := newLogger(&bytes.Buffer{}, config.Config{Logging: config.Logging{Level: "loud"}})
		assert.ErrorContains(t, err, "failed to parse log level 'loud'")
	})
}

func TestFallbackLogger(t *testing.T) {
	t.Parallel()

	logger := fallbackLogger()
	assert.NotEqual(t, zerolog.Disabled, logger.GetLevel())
}
