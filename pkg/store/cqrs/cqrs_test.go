package cqrs_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technotes/technotes/internal/testlog"
	"github.com/technotes/technotes/pkg/models"
	"github.com/technotes/technotes/pkg/store"
	"github.com/technotes/technotes/pkg/store/cqrs"
	"github.com/technotes/technotes/pkg/store/memory"
)

func newNote(t *testing.T, s store.Store, owner models.UserID, title string) *models.Note {
	t.Helper()
	n := &models.Note{UserID: owner, Title: title, Text: "body"}
	require.NoError(t, s.CreateNote(context.Background(), n))
	return n
}

func newUser(t *testing.T, s store.Store, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Roles: []string{models.DefaultRole}, Active: true}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestModeRouting(t *testing.T) {
	ctx := context.Background()
	primary, secondary := memory.New(), memory.New()
	c := cqrs.NewCQRSStore(primary, secondary, cqrs.ModeSingle)

	u := newUser(t, c, "alice")
	n := newNote(t, c, u.ID, "first")

	got, err := primary.GetNote(ctx, n.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	got, err = secondary.GetNote(ctx, n.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "single mode must not write the secondary")

	require.NoError(t, c.SetMode(cqrs.ModeSwitching))
	notes, err := c.ListNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes, "switching mode reads the secondary")

	newNote(t, c, u.ID, "second")
	notes, err = primary.ListNotes(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 2, "switching mode writes the primary")

	require.NoError(t, c.SetMode(cqrs.ModeReversed))
	newUser(t, c, "bob")
	users, err := secondary.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)
}

func TestReadOnlyModeRejectsWrites(t *testing.T) {
	ctx := context.Background()
	primary := memory.New()
	u := newUser(t, primary, "alice")
	n := newNote(t, primary, u.ID, "kept")

	c := cqrs.NewCQRSStore(primary, memory.New(), cqrs.ModeReadOnly)

	err := c.CreateNote(ctx, &models.Note{UserID: u.ID, Title: "new"})
	assert.ErrorIs(t, err, cqrs.ErrMigrationReadOnly)
	assert.ErrorIs(t, err, store.ErrReadOnly)

	_, err = c.DeleteNote(ctx, n.ID)
	assert.ErrorIs(t, err, store.ErrReadOnly)

	got, err := c.GetNote(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Title)
}

func TestSetModeTransitions(t *testing.T) {
	c := cqrs.NewCQRSStore(memory.New(), memory.New(), cqrs.ModeReadOnly)

	assert.Error(t, c.SetMode(cqrs.ModeReversed))
	assert.Equal(t, cqrs.ModeReadOnly, c.GetMode())

	require.NoError(t, c.SetMode(cqrs.ModeSwitching))
	assert.Equal(t, cqrs.ModeSwitching, c.GetMode())
}

func TestParseMode(t *testing.T) {
	m, err := cqrs.ParseMode("switching")
	require.NoError(t, err)
	assert.Equal(t, cqrs.ModeSwitching, m)

	_, err = cqrs.ParseMode("dual_write")
	assert.Error(t, err)
}

func TestSwapStores(t *testing.T) {
	ctx := context.Background()
	primary, secondary := memory.New(), memory.New()
	newUser(t, secondary, "carol")

	c := cqrs.NewCQRSStore(primary, secondary, cqrs.ModeSingle)
	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	c.SwapStores()
	users, err = c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSyncMissedUpdates(t *testing.T) {
	ctx := context.Background()
	primary, secondary := memory.New(), memory.New()
	since := time.Now().Add(-time.Minute)

	u := newUser(t, primary, "alice")
	n1 := newNote(t, primary, u.ID, "one")
	n2 := newNote(t, primary, u.ID, "two")

	// n2 already exists on the secondary with stale content
	stale := *n2
	stale.Text = "stale"
	require.NoError(t, secondary.CreateUser(ctx, &models.User{ID: u.ID, Username: u.Username}))
	require.NoError(t, secondary.CreateNote(ctx, &stale))

	c := cqrs.NewCQRSStore(primary, secondary, cqrs.ModeReadOnly)
	report, err := c.SyncMissedUpdates(ctx, since, time.Now().Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, 0, report.UsersCreated)
	assert.Equal(t, 1, report.UsersUpdated)
	assert.Equal(t, 1, report.NotesCreated)
	assert.Equal(t, 1, report.NotesUpdated)
	assert.Zero(t, report.Failed)

	got, err := secondary.GetNote(ctx, n1.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "one", got.Title)

	got, err = secondary.GetNote(ctx, n2.ID)
	require.NoError(t, err)
	assert.Equal(t, "body", got.Text)
}

func TestSyncCountsFailedWrites(t *testing.T) {
	ctx := context.Background()
	primary, secondary := memory.New(), memory.New()
	since := time.Now().Add(-time.Minute)

	u := newUser(t, primary, "alice")
	newNote(t, primary, u.ID, "taken")

	// same title under a different id collides on the destination
	owner := newUser(t, secondary, "bob")
	newNote(t, secondary, owner.ID, "taken")

	var logs bytes.Buffer
	c := cqrs.NewCQRSStore(primary, secondary, cqrs.ModeSingle)
	c.SetLogger(testlog.Logger(&logs))
	report, err := c.SyncMissedUpdates(ctx, since, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, report.UsersCreated)
	assert.Equal(t, 1, report.Failed)
	assert.Zero(t, report.NotesCreated)
	assert.Contains(t, logs.String(), "WARN: failed to sync record kind=note")
}

func TestReverseSyncMissedUpdates(t *testing.T) {
	ctx := context.Background()
	primary, secondary := memory.New(), memory.New()
	since := time.Now().Add(-time.Minute)

	c := cqrs.NewCQRSStore(primary, secondary, cqrs.ModeReversed)
	u := newUser(t, c, "dave")
	n := newNote(t, c, u.ID, "written during reversed mode")

	report, err := c.ReverseSyncMissedUpdates(ctx, since, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, report.UsersCreated)
	assert.Equal(t, 1, report.NotesCreated)

	got, err := primary.GetNote(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.UserID)
}

func TestPingAndClose(t *testing.T) {
	c := cqrs.NewCQRSStore(memory.New(), memory.New(), cqrs.ModeSingle)
	require.NoError(t, c.Migrate(context.Background()))
	require.NoError(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
}
