package store

import (
	"context"

	"github.com/technotes/technotes/pkg/models"
)

// ReadOnlyStore wraps a [Store] and rejects writes with [ErrReadOnly] while
// isReadOnly reports true. Reads, Migrate, Ping and Close pass through.
type ReadOnlyStore struct {
	Store
	isReadOnly func() bool
}

// NewReadOnlyStore wraps store. isReadOnly is consulted on every write, so the
// mode can be toggled at runtime.
func NewReadOnlyStore(store Store, isReadOnly func() bool) *ReadOnlyStore {
	return &ReadOnlyStore{
		Store:      store,
		isReadOnly: isReadOnly,
	}
}

// Unwrap returns the decorated store.
func (r *ReadOnlyStore) Unwrap() Store {
	return r.Store
}

func (r *ReadOnlyStore) checkReadOnly() error {
	if r.isReadOnly() {
		return ErrReadOnly
	}
	return nil
}

func (r *ReadOnlyStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.CreateUser(ctx, user)
}

func (r *ReadOnlyStore) UpdateUser(ctx context.Context, user *models.User) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.UpdateUser(ctx, user)
}

func (r *ReadOnlyStore) DeleteUser(ctx context.Context, id models.UserID) (*models.User, error) {
	if err := r.checkReadOnly(); err != nil {
		return nil, err
	}
	return r.Store.DeleteUser(ctx, id)
}

func (r *ReadOnlyStore) CreateNote(ctx context.Context, note *models.Note) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.CreateNote(ctx, note)
}

func (r *ReadOnlyStore) UpdateNote(ctx context.Context, note *models.Note) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.UpdateNote(ctx, note)
}

func (r *ReadOnlyStore) DeleteNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	if err := r.checkReadOnly(); err != nil {
		return nil, err
	}
	return r.Store.DeleteNote(ctx, id)
}
