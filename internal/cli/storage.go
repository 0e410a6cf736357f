package cli

import (
	"context"
	"fmt"

	"github.com/jcmexdev/storefront/internal/config"
	"github.com/jcmexdev/storefront/internal/storefront/core/checkoutlog"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/infra/storage/postgres"
	"github.com/jcmexdev/storefront/internal/storefront/infra/storage/sqlite"
)

type storage struct {
	ports.Store
	logs checkoutlog.Repository
}

// openStorage opens the configured driver with its schema applied.
func openStorage(ctx context.Context, cfg config.DBConfig) (*storage, error) {
	switch cfg.Driver {
	case "sqlite":
		st, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &storage{Store: st, logs: st.CheckoutLog()}, nil
	case "postgres":
		st, err := postgres.Open(ctx, cfg.DSN, cfg.MaxOpenConns)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
		return &storage{Store: st, logs: st.CheckoutLog()}, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}
