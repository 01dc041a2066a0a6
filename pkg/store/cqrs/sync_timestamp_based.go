package cqrs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/technotes/technotes/pkg/store"
)

// SyncReport counts what a sync copied and what it failed to copy.
type SyncReport struct {
	UsersCreated int
	UsersUpdated int
	NotesCreated int
	NotesUpdated int
	Failed       int
}

// SyncMissedUpdates copies records modified within [since, until] from the
// primary to the secondary store.
func (c *CQRSStore) SyncMissedUpdates(ctx context.Context, since, until time.Time) (SyncReport, error) {
	c.mu.RLock()
	from, to, log := c.primary, c.secondary, c.log
	c.mu.RUnlock()
	return syncMissedUpdates(ctx, log, from, to, since, until)
}

// ReverseSyncMissedUpdates copies records modified within [since, until] from
// the secondary to the primary store.
func (c *CQRSStore) ReverseSyncMissedUpdates(ctx context.Context, since, until time.Time) (SyncReport, error) {
	c.mu.RLock()
	from, to, log := c.secondary, c.primary, c.log
	c.mu.RUnlock()
	return syncMissedUpdates(ctx, log, from, to, since, until)
}

// syncMissedUpdates returns an error only when the source cannot be listed or
// read. Failures writing individual records are logged, counted and skipped.
func syncMissedUpdates(ctx context.Context, log *slog.Logger, from, to store.Store, since, until time.Time) (SyncReport, error) {
	var report SyncReport

	userIDs, err := from.ListModifiedUserIDs(ctx, since, until)
	if err != nil {
		return report, fmt.Errorf("failed to list modified users: %w", err)
	}
	for _, id := range userIDs {
		res, err := copyRecord(ctx, id,
			from.GetUser, to.GetUser, to.CreateUser, to.UpdateUser)
		if err != nil {
			return report, fmt.Errorf("failed to get user %s: %w", id, err)
		}
		report.count(log, res, &report.UsersCreated, &report.UsersUpdated, "user", id)
	}

	noteIDs, err := from.ListModifiedNoteIDs(ctx, since, until)
	if err != nil {
		return report, fmt.Errorf("failed to list modified notes: %w", err)
	}
	for _, id := range noteIDs {
		res, err := copyRecord(ctx, id,
			from.GetNote, to.GetNote, to.CreateNote, to.UpdateNote)
		if err != nil {
			return report, fmt.Errorf("failed to get note %s: %w", id, err)
		}
		report.count(log, res, &report.NotesCreated, &report.NotesUpdated, "note", id)
	}

	return report, nil
}

// copyResult describes the outcome of copying one record.
type copyResult struct {
	created bool
	skipped bool
	err     error
}

// copyRecord reads id from the source and creates or updates it on the
// destination. The returned error is a read failure on the source; write
// failures are carried in the result.
func copyRecord[ID fmt.Stringer, T any](
	ctx context.Context,
	id ID,
	get func(context.Context, ID) (*T, error),
	getDest func(context.Context, ID) (*T, error),
	create func(context.Context, *T) error,
	update func(context.Context, *T) error,
) (copyResult, error) {
	record, err := get(ctx, id)
	if err != nil {
		return copyResult{}, err
	}
	if record == nil {
		// deleted after listing
		return copyResult{skipped: true}, nil
	}

	existing, err := getDest(ctx, id)
	if err != nil {
		return copyResult{err: err}, nil
	}
	if existing == nil {
		return copyResult{created: true, err: create(ctx, record)}, nil
	}
	return copyResult{err: update(ctx, record)}, nil
}

func (r *SyncReport) count(log *slog.Logger, res copyResult, created, updated *int, kind string, id fmt.Stringer) {
	switch {
	case res.skipped:
	case res.err != nil:
		r.Failed++
		log.Warn("failed to sync record", "kind", kind, "id", id.String(), "error", res.err)
	case res.created:
		*created++
	default:
		*updated++
	}
}
