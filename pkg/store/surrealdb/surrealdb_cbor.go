// Package surrealdb implements [github.com/technotes/technotes/pkg/store.Store] on
// SurrealDB using native SurrealQL.
//
// # Connection
//
// [NewSurrealStoreCBOR] builds the connection by hand instead of using
// FromEndpointURLString so that the surrealcbor codec handles marshaling. Typed
// IDs become RecordIDs and time.Time values become SurrealDB datetimes.
//
// # Schema
//
// Tables are created implicitly on first insert. [SurrealStoreCBOR.Migrate]
// only defines the UNIQUE indexes on notes.title and users.username. Writes that
// would violate them fail inside SurrealDB and are reported as
// store.ErrDuplicateTitle or store.ErrDuplicateUsername.
//
// # Query safety
//
// Every query is parameterized ($param). Typed IDs marshal to RecordIDs, so
// record references never pass through string formatting.
//
// # Usage
//
//	s, err := surrealdb.NewSurrealStoreCBOR(ctx,
//		"ws://localhost:8000/rpc",
//		"technotes", "technotes", "root", "root",
//	)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	if err := s.Migrate(ctx); err != nil {
//		return err
//	}
package surrealdb

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/technotes/technotes/pkg/models"
	"github.com/technotes/technotes/pkg/store"
)

// Index names are matched against violation messages.
const (
	noteTitleIndex    = "notes_title_unique"
	userUsernameIndex = "users_username_unique"
)

const schema = `
DEFINE INDEX IF NOT EXISTS notes_title_unique ON TABLE notes FIELDS title UNIQUE;
DEFINE INDEX IF NOT EXISTS users_username_unique ON TABLE users FIELDS username UNIQUE;
`

// SurrealStoreCBOR implements the Store interface using SurrealDB with the
// surrealcbor codec.
type SurrealStoreCBOR struct {
	db       *surrealdb.DB
	ns       string
	database string
}

var _ store.Store = (*SurrealStoreCBOR)(nil)

// NewSurrealStoreCBOR connects to wsURL, signs in when credentials are given
// and selects namespace and database.
func NewSurrealStoreCBOR(ctx context.Context, wsURL, namespace, database, username, password string) (*SurrealStoreCBOR, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	conf := connection.NewConfig(u)

	// Without surrealcbor, time.Time is rejected as an invalid datetime.
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	conn := gorillaws.New(conf)

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if username != "" && password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": username,
			"pass": password,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, namespace, database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &SurrealStoreCBOR{
		db:       db,
		ns:       namespace,
		database: database,
	}, nil
}

// Migrate defines the unique indexes. Tables need no definition.
func (s *SurrealStoreCBOR) Migrate(ctx context.Context) error {
	if _, err := surrealdb.Query[any](ctx, s.db, schema, nil); err != nil {
		return fmt.Errorf("failed to define indexes: %w", err)
	}
	return nil
}

func (s *SurrealStoreCBOR) Ping(ctx context.Context) error {
	if _, err := surrealdb.Query[bool](ctx, s.db, "RETURN true", nil); err != nil {
		return fmt.Errorf("failed to ping SurrealDB: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SurrealStoreCBOR) Close() error {
	return s.db.Close(context.Background())
}

// User operations
func (s *SurrealStoreCBOR) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = models.NewUserID()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	if _, err := surrealdb.Create[models.User](ctx, s.db, surrealdb_models.Table(models.UsersTable), user); err != nil {
		return fmt.Errorf("failed to create user: %w", classifyIndexError(err))
	}
	return nil
}

func (s *SurrealStoreCBOR) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	user, err := surrealdb.Select[models.User](ctx, s.db, id.RecordID())
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.ID.IsZero() {
		return nil, nil
	}
	return user, nil
}

func (s *SurrealStoreCBOR) GetUsersByIDs(ctx context.Context, ids []models.UserID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	// ids marshal to RecordIDs, so INSIDE compares records, not strings
	query := "SELECT * FROM users WHERE id INSIDE $ids"
	return queryAll[models.User](ctx, s.db, query, map[string]any{"ids": ids}, "get users by ids")
}

func (s *SurrealStoreCBOR) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	updated, err := surrealdb.Update[models.User](ctx, s.db, user.ID.RecordID(), user)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to update user: %w", classifyIndexError(err))
	}
	if updated == nil || updated.ID.IsZero() {
		return fmt.Errorf("failed to update user %s: %w", user.ID, store.ErrNotFound)
	}
	return nil
}

func (s *SurrealStoreCBOR) DeleteUser(ctx context.Context, id models.UserID) (*models.User, error) {
	deleted, err := surrealdb.Delete[models.User](ctx, s.db, id.RecordID())
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	if deleted == nil || deleted.ID.IsZero() {
		return nil, nil
	}
	return deleted, nil
}

func (s *SurrealStoreCBOR) ListUsers(ctx context.Context) ([]*models.User, error) {
	return queryAll[models.User](ctx, s.db, "SELECT * FROM users ORDER BY createdAt", nil, "list users")
}

// Note operations
func (s *SurrealStoreCBOR) CreateNote(ctx context.Context, note *models.Note) error {
	if note.ID.IsZero() {
		note.ID = models.NewNoteID()
	}
	now := time.Now()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = now
	}

	// The user field is stored as a RecordID thanks to UserID's MarshalCBOR.
	if _, err := surrealdb.Create[models.Note](ctx, s.db, surrealdb_models.Table(models.NotesTable), note); err != nil {
		return fmt.Errorf("failed to create note: %w", classifyIndexError(err))
	}
	return nil
}

func (s *SurrealStoreCBOR) GetNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	note, err := surrealdb.Select[models.Note](ctx, s.db, id.RecordID())
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if note == nil || note.ID.IsZero() {
		return nil, nil
	}
	return note, nil
}

func (s *SurrealStoreCBOR) UpdateNote(ctx context.Context, note *models.Note) error {
	note.UpdatedAt = time.Now()
	updated, err := surrealdb.Update[models.Note](ctx, s.db, note.ID.RecordID(), note)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to update note: %w", classifyIndexError(err))
	}
	if updated == nil || updated.ID.IsZero() {
		return fmt.Errorf("failed to update note %s: %w", note.ID, store.ErrNotFound)
	}
	return nil
}

func (s *SurrealStoreCBOR) DeleteNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	deleted, err := surrealdb.Delete[models.Note](ctx, s.db, id.RecordID())
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete note: %w", err)
	}
	if deleted == nil || deleted.ID.IsZero() {
		return nil, nil
	}
	return deleted, nil
}

func (s *SurrealStoreCBOR) ListNotes(ctx context.Context) ([]*models.Note, error) {
	return queryAll[models.Note](ctx, s.db, "SELECT * FROM notes ORDER BY createdAt", nil, "list notes")
}

func (s *SurrealStoreCBOR) ListNotesByUser(ctx context.Context, userID models.UserID) ([]*models.Note, error) {
	query := "SELECT * FROM notes WHERE `user` = $user ORDER BY createdAt"
	return queryAll[models.Note](ctx, s.db, query, map[string]any{"user": userID}, "list notes by user")
}

// Timestamp-based catch-up for CQRS consistency

func (s *SurrealStoreCBOR) ListModifiedUserIDs(ctx context.Context, since, until time.Time) ([]models.UserID, error) {
	return listModifiedIDs[models.UserID](ctx, s.db, models.UsersTable, since, until)
}

func (s *SurrealStoreCBOR) ListModifiedNoteIDs(ctx context.Context, since, until time.Time) ([]models.NoteID, error) {
	return listModifiedIDs[models.NoteID](ctx, s.db, models.NotesTable, since, until)
}

func queryAll[T any](ctx context.Context, db *surrealdb.DB, query string, params map[string]any, what string) ([]*T, error) {
	result, err := surrealdb.Query[[]T](ctx, db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}

	var out []*T
	if result != nil && len(*result) > 0 {
		rows := (*result)[0].Result
		out = make([]*T, 0, len(rows))
		for i := range rows {
			out = append(out, &rows[i])
		}
	}
	return out, nil
}

func listModifiedIDs[ID any](ctx context.Context, db *surrealdb.DB, table string, since, until time.Time) ([]ID, error) {
	// table is one of the package constants, never user input
	query := fmt.Sprintf(`SELECT id FROM %s
		WHERE (createdAt >= $since AND createdAt <= $until)
		OR (updatedAt >= $since AND updatedAt <= $until)`, table)
	params := map[string]any{
		"since": since,
		"until": until,
	}

	result, err := surrealdb.Query[[]struct {
		ID ID `json:"id"`
	}](ctx, db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list modified %s IDs: %w", table, err)
	}

	var ids []ID
	if result != nil && len(*result) > 0 {
		for _, record := range (*result)[0].Result {
			ids = append(ids, record.ID)
		}
	}
	return ids, nil
}
