// Package memory provides an in-process [store.Store] for development and tests.
//
// Records live in maps guarded by a single RWMutex. Title and username indexes
// are kept alongside the records, so uniqueness is enforced the same way a
// database unique index would: atomically with the write. Entities are copied
// on the way in and out; callers never share memory with the store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/technotes/technotes/pkg/models"
	"github.com/technotes/technotes/pkg/store"
)

type MemoryStore struct {
	mu sync.RWMutex

	users     map[models.UserID]*models.User
	usernames map[string]models.UserID

	notes  map[models.NoteID]*models.Note
	titles map[string]models.NoteID

	now func() time.Time
}

var _ store.Store = (*MemoryStore)(nil)

func New() *MemoryStore {
	return &MemoryStore{
		users:     make(map[models.UserID]*models.User),
		usernames: make(map[string]models.UserID),
		notes:     make(map[models.NoteID]*models.Note),
		titles:    make(map[string]models.NoteID),
		now:       time.Now,
	}
}

func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = models.NewUserID()
	}
	if _, taken := s.usernames[user.Username]; taken {
		return fmt.Errorf("failed to create user %q: %w", user.Username, store.ErrDuplicateUsername)
	}

	now := s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	s.users[user.ID] = copyUser(user)
	s.usernames[user.Username] = user.ID
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (s *MemoryStore) GetUsersByIDs(ctx context.Context, ids []models.UserID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("failed to update user %s: %w", user.ID, store.ErrNotFound)
	}
	if holder, taken := s.usernames[user.Username]; taken && holder != user.ID {
		return fmt.Errorf("failed to update user %q: %w", user.Username, store.ErrDuplicateUsername)
	}

	delete(s.usernames, existing.Username)
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = s.now()
	s.users[user.ID] = copyUser(user)
	s.usernames[user.Username] = user.ID
	return nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id models.UserID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	delete(s.users, id)
	delete(s.usernames, u.Username)
	return u, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *MemoryStore) CreateNote(ctx context.Context, note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if note.ID.IsZero() {
		note.ID = models.NewNoteID()
	}
	if _, taken := s.titles[note.Title]; taken {
		return fmt.Errorf("failed to create note %q: %w", note.Title, store.ErrDuplicateTitle)
	}

	now := s.now()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = now
	}

	stored := *note
	s.notes[note.ID] = &stored
	s.titles[note.Title] = note.ID
	return nil
}

func (s *MemoryStore) GetNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, nil
	}
	out := *n
	return &out, nil
}

func (s *MemoryStore) UpdateNote(ctx context.Context, note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.notes[note.ID]
	if !ok {
		return fmt.Errorf("failed to update note %s: %w", note.ID, store.ErrNotFound)
	}
	if holder, taken := s.titles[note.Title]; taken && holder != note.ID {
		return fmt.Errorf("failed to update note %q: %w", note.Title, store.ErrDuplicateTitle)
	}

	delete(s.titles, existing.Title)
	note.CreatedAt = existing.CreatedAt
	note.UpdatedAt = s.now()
	stored := *note
	s.notes[note.ID] = &stored
	s.titles[note.Title] = note.ID
	return nil
}

func (s *MemoryStore) DeleteNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, nil
	}
	delete(s.notes, id)
	delete(s.titles, n.Title)
	return n, nil
}

func (s *MemoryStore) ListNotes(ctx context.Context) ([]*models.Note, error) {
	return s.listNotes(func(*models.Note) bool { return true }), nil
}

func (s *MemoryStore) ListNotesByUser(ctx context.Context, userID models.UserID) ([]*models.Note, error) {
	return s.listNotes(func(n *models.Note) bool { return n.UserID == userID }), nil
}

func (s *MemoryStore) listNotes(keep func(*models.Note) bool) []*models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := make([]*models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if keep(n) {
			out := *n
			notes = append(notes, &out)
		}
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})
	return notes
}

func (s *MemoryStore) ListModifiedUserIDs(ctx context.Context, since, until time.Time) ([]models.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []models.UserID
	for id, u := range s.users {
		if modifiedWithin(u.CreatedAt, u.UpdatedAt, since, until) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *MemoryStore) ListModifiedNoteIDs(ctx context.Context, since, until time.Time) ([]models.NoteID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []models.NoteID
	for id, n := range s.notes {
		if modifiedWithin(n.CreatedAt, n.UpdatedAt, since, until) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func modifiedWithin(created, updated, since, until time.Time) bool {
	within := func(t time.Time) bool { return !t.Before(since) && !t.After(until) }
	return within(created) || within(updated)
}

func copyUser(u *models.User) *models.User {
	out := *u
	out.Roles = append([]string(nil), u.Roles...)
	return &out
}
