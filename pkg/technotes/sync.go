package technotes

import (
	"context"
	"fmt"
	"time"

	"github.com/technotes/technotes/pkg/store/cqrs"
)

// Sync performs timestamp-based catch-up between the two stores of a cqrs
// backend. "forward" copies from the primary to the secondary, "reverse" the
// other way. Records modified within [since, until] are created on the
// destination or overwritten there.
//
// Sync needs write access to the destination, so it refuses to run when the
// application is read-only. Failures on individual records are logged and
// counted; the sync goes on with the next record.
func (a *App) Sync(ctx context.Context, direction string, since, until time.Time) error {
	if a.IsReadOnly() {
		return fmt.Errorf("sync cannot run in read-only mode as it needs write access to databases")
	}

	cqrsStore := a.cqrsStore()
	if cqrsStore == nil {
		return fmt.Errorf("sync requires the %s backend, have %s", BackendCQRS, a.config.StoreBackend)
	}

	var (
		report cqrs.SyncReport
		err    error
	)
	switch direction {
	case "forward":
		a.console.Info("performing forward sync", "since", since, "until", until)
		report, err = cqrsStore.SyncMissedUpdates(ctx, since, until)
	case "reverse":
		a.console.Info("performing reverse sync", "since", since, "until", until)
		report, err = cqrsStore.ReverseSyncMissedUpdates(ctx, since, until)
	default:
		return fmt.Errorf("invalid sync direction: %s (must be 'forward' or 'reverse')", direction)
	}
	if err != nil {
		return fmt.Errorf("%s sync failed: %w", direction, err)
	}

	a.console.Info("sync completed",
		"usersCreated", report.UsersCreated,
		"usersUpdated", report.UsersUpdated,
		"notesCreated", report.NotesCreated,
		"notesUpdated", report.NotesUpdated,
		"failed", report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d records could not be synced", report.Failed)
	}
	return nil
}

// ParseTime parses an RFC3339 time, returning defaultTime for an empty string.
func ParseTime(timeStr string, defaultTime time.Time) (time.Time, error) {
	if timeStr == "" {
		return defaultTime, nil
	}
	return time.Parse(time.RFC3339, timeStr)
}
