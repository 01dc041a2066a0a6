package cqrs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/technotes/technotes/pkg/models"
	"github.com/technotes/technotes/pkg/store"
)

type MigrationMode string

const (
	// ModeSingle reads and writes the primary store.
	ModeSingle MigrationMode = "single"

	// ModeReadOnly reads the primary store and rejects writes.
	ModeReadOnly MigrationMode = "read_only"

	// ModeSwitching reads the secondary store and writes the primary.
	ModeSwitching MigrationMode = "switching"

	// ModeReversed reads and writes the secondary store.
	ModeReversed MigrationMode = "reversed"
)

// ErrMigrationReadOnly is returned for writes in ModeReadOnly.
var ErrMigrationReadOnly = fmt.Errorf("system is in read-only mode during migration: %w", store.ErrReadOnly)

// ParseMode validates a mode name.
func ParseMode(s string) (MigrationMode, error) {
	switch m := MigrationMode(s); m {
	case ModeSingle, ModeReadOnly, ModeSwitching, ModeReversed:
		return m, nil
	}
	return "", fmt.Errorf("invalid migration mode: %s", s)
}

type CQRSStore struct {
	primary   store.Store
	secondary store.Store
	mode      MigrationMode
	log       *slog.Logger
	mu        sync.RWMutex
}

var _ store.Store = (*CQRSStore)(nil)

func NewCQRSStore(primary, secondary store.Store, mode MigrationMode) *CQRSStore {
	return &CQRSStore{
		primary:   primary,
		secondary: secondary,
		mode:      mode,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets where records that fail to sync are reported.
func (c *CQRSStore) SetLogger(l *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = l
}

// SetMode changes the routing. Leaving read_only is only allowed towards
// switching or single.
func (c *CQRSStore) SetMode(mode MigrationMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeReadOnly && mode != ModeSwitching && mode != ModeSingle {
		return fmt.Errorf("can only transition from read_only to switching or single mode")
	}
	c.mode = mode
	return nil
}

func (c *CQRSStore) GetMode() MigrationMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// SwapStores exchanges primary and secondary, completing a migration.
func (c *CQRSStore) SwapStores() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.primary, c.secondary = c.secondary, c.primary
}

func (c *CQRSStore) readStore() store.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch c.mode {
	case ModeSwitching, ModeReversed:
		return c.secondary
	default:
		return c.primary
	}
}

func (c *CQRSStore) writeStore() (store.Store, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch c.mode {
	case ModeReadOnly:
		return nil, ErrMigrationReadOnly
	case ModeReversed:
		return c.secondary, nil
	default:
		return c.primary, nil
	}
}

func (c *CQRSStore) Migrate(ctx context.Context) error {
	if err := c.primary.Migrate(ctx); err != nil {
		return fmt.Errorf("primary migration failed: %w", err)
	}
	if err := c.secondary.Migrate(ctx); err != nil {
		return fmt.Errorf("secondary migration failed: %w", err)
	}
	return nil
}

func (c *CQRSStore) Ping(ctx context.Context) error {
	if err := c.primary.Ping(ctx); err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	if err := c.secondary.Ping(ctx); err != nil {
		return fmt.Errorf("secondary: %w", err)
	}
	return nil
}

func (c *CQRSStore) Close() error {
	return errors.Join(c.primary.Close(), c.secondary.Close())
}

func (c *CQRSStore) CreateUser(ctx context.Context, user *models.User) error {
	s, err := c.writeStore()
	if err != nil {
		return err
	}
	return s.CreateUser(ctx, user)
}

func (c *CQRSStore) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	return c.readStore().GetUser(ctx, id)
}

func (c *CQRSStore) GetUsersByIDs(ctx context.Context, ids []models.UserID) ([]*models.User, error) {
	return c.readStore().GetUsersByIDs(ctx, ids)
}

func (c *CQRSStore) UpdateUser(ctx context.Context, user *models.User) error {
	s, err := c.writeStore()
	if err != nil {
		return err
	}
	return s.UpdateUser(ctx, user)
}

func (c *CQRSStore) DeleteUser(ctx context.Context, id models.UserID) (*models.User, error) {
	s, err := c.writeStore()
	if err != nil {
		return nil, err
	}
	return s.DeleteUser(ctx, id)
}

func (c *CQRSStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	return c.readStore().ListUsers(ctx)
}

func (c *CQRSStore) CreateNote(ctx context.Context, note *models.Note) error {
	s, err := c.writeStore()
	if err != nil {
		return err
	}
	return s.CreateNote(ctx, note)
}

func (c *CQRSStore) GetNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	return c.readStore().GetNote(ctx, id)
}

func (c *CQRSStore) UpdateNote(ctx context.Context, note *models.Note) error {
	s, err := c.writeStore()
	if err != nil {
		return err
	}
	return s.UpdateNote(ctx, note)
}

func (c *CQRSStore) DeleteNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	s, err := c.writeStore()
	if err != nil {
		return nil, err
	}
	return s.DeleteNote(ctx, id)
}

func (c *CQRSStore) ListNotes(ctx context.Context) ([]*models.Note, error) {
	return c.readStore().ListNotes(ctx)
}

func (c *CQRSStore) ListNotesByUser(ctx context.Context, userID models.UserID) ([]*models.Note, error) {
	return c.readStore().ListNotesByUser(ctx, userID)
}

func (c *CQRSStore) ListModifiedUserIDs(ctx context.Context, since, until time.Time) ([]models.UserID, error) {
	return c.readStore().ListModifiedUserIDs(ctx, since, until)
}

func (c *CQRSStore) ListModifiedNoteIDs(ctx context.Context, since, until time.Time) ([]models.NoteID, error) {
	return c.readStore().ListModifiedNoteIDs(ctx, since, until)
}
