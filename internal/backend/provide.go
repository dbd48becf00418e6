package backend

import (
	"context"
	"fmt"

	"github.com/samber/do"

	"github.com/root-talis/dbmigrate/internal/config"
)

func Provide(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Backend, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		return Open(context.Background(), cfg.URL, cfg.Table)
	})
}
