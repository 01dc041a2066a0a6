package technotes

import (
	"context"
	"fmt"
)

// Migrate creates the schema on the configured store. For a cqrs store both
// backends are migrated. Running it twice is harmless.
func (a *App) Migrate(ctx context.Context, cmd *MigrateCommand) error {
	a.console.Info("running database migrations", "backend", a.config.StoreBackend)
	if err := a.store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	a.console.Info("migrations completed")
	return nil
}
