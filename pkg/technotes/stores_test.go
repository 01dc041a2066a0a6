package technotes

import (
	"context"
	"sync"

	"github.com/technotes/technotes/pkg/models"
	"github.com/technotes/technotes/pkg/store"
)

// countingStore counts batch user lookups and can fail listings and pings.
type countingStore struct {
	store.Store

	mu           sync.Mutex
	batchLookups int
	listErr      error
	pingErr      error
}

func (c *countingStore) GetUsersByIDs(ctx context.Context, ids []models.UserID) ([]*models.User, error) {
	c.mu.Lock()
	c.batchLookups++
	c.mu.Unlock()
	return c.Store.GetUsersByIDs(ctx, ids)
}

func (c *countingStore) ListNotes(ctx context.Context) ([]*models.Note, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.Store.ListNotes(ctx)
}

func (c *countingStore) Ping(ctx context.Context) error {
	if c.pingErr != nil {
		return c.pingErr
	}
	return c.Store.Ping(ctx)
}

func (c *countingStore) Unwrap() store.Store {
	return c.Store
}

// vanishingStore deletes every note and user right after handing it out, so
// the next write finds it gone.
type vanishingStore struct {
	store.Store
}

func (v *vanishingStore) GetNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	n, err := v.Store.GetNote(ctx, id)
	if n != nil {
		_, err = v.Store.DeleteNote(ctx, id)
	}
	return n, err
}

func (v *vanishingStore) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	u, err := v.Store.GetUser(ctx, id)
	if u != nil {
		_, err = v.Store.DeleteUser(ctx, id)
	}
	return u, err
}

func (v *vanishingStore) Unwrap() store.Store {
	return v.Store
}
