// Package store provides the persistence abstraction for the technotes API.
//
// The [Store] interface is a repository over two collections, users and notes.
// Handlers receive a Store through the application and never reach a database
// client directly, so the backend is chosen once at startup:
//
//   - [github.com/technotes/technotes/pkg/store/surrealdb.SurrealStoreCBOR]: the document
//     store, native SurrealQL over a WebSocket connection with the surrealcbor codec
//   - [github.com/technotes/technotes/pkg/store/postgres.PostgresStore]: GORM over PostgreSQL
//   - [github.com/technotes/technotes/pkg/store/memory.MemoryStore]: in-process maps for
//     development and tests
//   - [github.com/technotes/technotes/pkg/store/cqrs.CQRSStore]: routes reads and writes
//     between two stores and catches one up with the other
//
// # Uniqueness
//
// Note titles and usernames are unique. Every backend enforces this with a unique
// index and reports violations as [ErrDuplicateTitle] or [ErrDuplicateUsername],
// wrapped with context. Callers classify with errors.Is and never check for an
// existing record before writing, so concurrent writers cannot both succeed.
//
// # Missing records
//
// Get and Delete methods return a nil entity and a nil error when the record does
// not exist. Updates cannot report that way, so they return an error wrapping
// [ErrNotFound] and never recreate the record. Other errors are failures of the
// store itself.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/technotes/technotes/pkg/models"
)

var (
	// ErrDuplicateTitle is returned when a note write would repeat another note's title.
	ErrDuplicateTitle = errors.New("duplicate note title")

	// ErrDuplicateUsername is returned when a user write would repeat another user's username.
	ErrDuplicateUsername = errors.New("duplicate username")

	// ErrNotFound is returned by updates of a record that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrReadOnly is returned by [ReadOnlyStore] for writes while read-only mode is on.
	ErrReadOnly = errors.New("operation denied: application is in read-only mode")
)

// Store is the repository used by the HTTP handlers.
type Store interface {
	// Migrate prepares the schema, including the unique indexes on
	// notes.title and users.username. It is safe to call repeatedly.
	Migrate(ctx context.Context) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection. The store is unusable afterwards.
	Close() error

	// CreateUser inserts user, generating an ID and timestamps when unset.
	// Returns an error wrapping ErrDuplicateUsername when the username is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser returns the user with id, or nil if there is none.
	GetUser(ctx context.Context, id models.UserID) (*models.User, error)

	// GetUsersByIDs returns the users whose IDs are in ids using a single
	// query. Unknown IDs are skipped and the result order is unspecified.
	GetUsersByIDs(ctx context.Context, ids []models.UserID) ([]*models.User, error)

	// UpdateUser replaces the stored user and refreshes UpdatedAt.
	// Returns an error wrapping ErrDuplicateUsername when the username is taken
	// by another user, or ErrNotFound when the user does not exist.
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser removes the user and returns what was deleted, or nil if
	// there was no such user.
	DeleteUser(ctx context.Context, id models.UserID) (*models.User, error)

	// ListUsers returns all users ordered by creation time.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// CreateNote inserts note, generating an ID and timestamps when unset.
	// Returns an error wrapping ErrDuplicateTitle when the title is taken.
	CreateNote(ctx context.Context, note *models.Note) error

	// GetNote returns the note with id, or nil if there is none.
	GetNote(ctx context.Context, id models.NoteID) (*models.Note, error)

	// UpdateNote replaces the stored note and refreshes UpdatedAt.
	// A note keeping its own title never conflicts; a title held by another
	// note returns an error wrapping ErrDuplicateTitle. A missing note returns
	// ErrNotFound.
	UpdateNote(ctx context.Context, note *models.Note) error

	// DeleteNote removes the note and returns what was deleted, or nil if
	// there was no such note.
	DeleteNote(ctx context.Context, id models.NoteID) (*models.Note, error)

	// ListNotes returns all notes ordered by creation time.
	ListNotes(ctx context.Context) ([]*models.Note, error)

	// ListNotesByUser returns the notes assigned to userID.
	ListNotesByUser(ctx context.Context, userID models.UserID) ([]*models.Note, error)

	// ListModifiedUserIDs returns users created or updated within [since, until].
	ListModifiedUserIDs(ctx context.Context, since, until time.Time) ([]models.UserID, error)

	// ListModifiedNoteIDs returns notes created or updated within [since, until].
	ListModifiedNoteIDs(ctx context.Context, since, until time.Time) ([]models.NoteID, error)
}

// Unwrapper is implemented by stores that decorate another store.
type Unwrapper interface {
	Unwrap() Store
}
