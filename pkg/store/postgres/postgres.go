// Package postgres implements [github.com/technotes/technotes/pkg/store.Store] on
// PostgreSQL through GORM.
//
// The schema comes from the GORM tags on the models: AutoMigrate creates the
// tables together with the unique indexes on notes.title and users.username.
// Violations are translated by GORM (TranslateError) or recognized by their
// SQLSTATE and reported as store.ErrDuplicateTitle or store.ErrDuplicateUsername.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/technotes/technotes/pkg/models"
	"github.com/technotes/technotes/pkg/store"
)

// SQLSTATE for unique_violation
const uniqueViolation = "23505"

type PostgresStore struct {
	db *gorm.DB
}

var _ store.Store = (*PostgresStore)(nil)

// NewPostgresStore opens dsn and verifies the connection with a ping.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Note{},
	)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// User operations
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", classify(err, store.ErrDuplicateUsername))
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *PostgresStore) GetUsersByIDs(ctx context.Context, ids []models.UserID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*models.User
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// UpdateUser writes every column of user. Unlike Save it never inserts, so a
// user deleted concurrently stays deleted.
func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	res := s.db.WithContext(ctx).
		Model(user).
		Select("*").
		Omit("id", "created_at").
		Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", classify(res.Error, store.ErrDuplicateUsername))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update user %s: %w", user.ID, store.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id models.UserID) (*models.User, error) {
	var deleted []*models.User
	err := s.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&deleted).Error
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, nil
	}
	return deleted[0], nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := s.db.WithContext(ctx).Order("created_at").Find(&users).Error
	return users, err
}

// Note operations
func (s *PostgresStore) CreateNote(ctx context.Context, note *models.Note) error {
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("failed to create note: %w", classify(err, store.ErrDuplicateTitle))
	}
	return nil
}

func (s *PostgresStore) GetNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	var note models.Note
	err := s.db.WithContext(ctx).First(&note, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &note, nil
}

func (s *PostgresStore) UpdateNote(ctx context.Context, note *models.Note) error {
	res := s.db.WithContext(ctx).
		Model(note).
		Select("*").
		Omit("id", "created_at").
		Updates(note)
	if res.Error != nil {
		return fmt.Errorf("failed to update note: %w", classify(res.Error, store.ErrDuplicateTitle))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update note %s: %w", note.ID, store.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	var deleted []*models.Note
	err := s.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&deleted).Error
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, nil
	}
	return deleted[0], nil
}

func (s *PostgresStore) ListNotes(ctx context.Context) ([]*models.Note, error) {
	var notes []*models.Note
	err := s.db.WithContext(ctx).Order("created_at").Find(&notes).Error
	return notes, err
}

func (s *PostgresStore) ListNotesByUser(ctx context.Context, userID models.UserID) ([]*models.Note, error) {
	var notes []*models.Note
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&notes).Error
	return notes, err
}

// Timestamp-based catch-up for CQRS consistency

func (s *PostgresStore) ListModifiedUserIDs(ctx context.Context, since, until time.Time) ([]models.UserID, error) {
	var ids []models.UserID
	err := s.modifiedWithin(ctx, &models.User{}, since, until).Pluck("id", &ids).Error
	return ids, err
}

func (s *PostgresStore) ListModifiedNoteIDs(ctx context.Context, since, until time.Time) ([]models.NoteID, error) {
	var ids []models.NoteID
	err := s.modifiedWithin(ctx, &models.Note{}, since, until).Pluck("id", &ids).Error
	return ids, err
}

func (s *PostgresStore) modifiedWithin(ctx context.Context, model any, since, until time.Time) *gorm.DB {
	return s.db.WithContext(ctx).Model(model).
		Where("(created_at BETWEEN ? AND ?) OR (updated_at BETWEEN ? AND ?)", since, until, since, until)
}

// classify maps unique violations to sentinel.
func classify(err error, sentinel error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "SQLSTATE "+uniqueViolation)
}
