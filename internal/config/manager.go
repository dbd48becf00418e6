package config

import (
	"fmt"

	"github.com/knadh/koanf/v2"
)

type Manager struct {
	sources []*Source
	config  Config
}

func NewManager(sources ...*Source) *Manager {
	return &Manager{
		sources: sources,
	}
}

func (m *Manager) Config() Config {
	return m.config
}

// Load merges the sources over the defaults. Later sources take precedence.
func (m *Manager) Load() error {
	k := koanf.New(".")
	if err := loadStruct(k, DefaultConfig()); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, source := range m.sources {
		if err := k.Load(source.Provider(k), source.Parser, source.Options...); err != nil {
			return fmt.Errorf("failed to load user-specified config: %w", err)
		}
	}

	var combined Config
	if err := k.Unmarshal("", &combined); err != nil {
		return fmt.Errorf("failed to unmarshal combined config: %w", err)
	}

	if err := combined.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	m.config = combined

	return nil
}
