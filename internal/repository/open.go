package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
)

// Open dispatches on the configured driver.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (InvoiceRepository, error) {
	switch cfg.Driver {
	case "sqlite":
		return OpenSQLite(ctx, cfg.DSN, logger)
	case "postgres":
		return OpenPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown database driver: %q", cfg.Driver)
	}
}
