package data

import (
	"context"
	"database/sql"

	"github.com/tailfin-labs/tailfin/internal/migrate"
)

// RunMigrations sets up the control-database schema by delegating to the
// migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
