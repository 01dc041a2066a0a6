package client_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technotes/technotes/internal/testlog"
	"github.com/technotes/technotes/pkg/client"
	"github.com/technotes/technotes/pkg/models"
	"github.com/technotes/technotes/pkg/store/memory"
	"github.com/technotes/technotes/pkg/technotes"
)

func newServer(t *testing.T) (*client.Client, *technotes.App) {
	t.Helper()

	app, err := technotes.New(context.Background(),
		&technotes.Config{StoreBackend: technotes.BackendMemory, Env: "test"},
		technotes.WithStore(memory.New()),
		technotes.WithLogs(technotes.DiscardLogs()),
		technotes.WithLogger(testlog.Logger(io.Discard)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	server := httptest.NewServer(app.Handler())
	t.Cleanup(server.Close)

	return client.NewClient(server.URL), app
}

func TestNotesRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newServer(t)

	userID, err := c.CreateUser(ctx, "alice", nil)
	require.NoError(t, err)

	noteID, err := c.CreateNote(ctx, userID, "Shopping", "milk")
	require.NoError(t, err)

	_, err = c.CreateNote(ctx, userID, "Shopping", "again")
	assert.True(t, client.IsConflict(err), "got %v", err)

	msg, err := c.UpdateNote(ctx, &models.Note{ID: noteID, UserID: userID, Title: "Groceries", Text: "eggs", Completed: true})
	require.NoError(t, err)
	assert.Equal(t, "Groceries updated", msg)

	notes, err := c.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, noteID, notes[0].ID)
	assert.True(t, notes[0].Completed)
	require.NotNil(t, notes[0].Username)
	assert.Equal(t, "alice", *notes[0].Username)

	msg, err = c.DeleteNote(ctx, noteID)
	require.NoError(t, err)
	assert.Equal(t, "Note 'Groceries' with ID "+noteID.String()+" deleted", msg)

	_, err = c.DeleteNote(ctx, noteID)
	assert.True(t, client.IsNotFound(err))
}

func TestUsersRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newServer(t)

	id, err := c.CreateUser(ctx, "bob", []string{"Manager"})
	require.NoError(t, err)

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []string{"Manager"}, users[0].Roles)

	users[0].Active = false
	msg, err := c.UpdateUser(ctx, users[0])
	require.NoError(t, err)
	assert.Equal(t, "bob updated", msg)

	_, err = c.CreateUser(ctx, "", nil)
	assert.True(t, client.IsBadRequest(err))

	var statusErr *client.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "All fields are required", statusErr.Message)

	msg, err = c.DeleteUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Username bob with ID "+id.String()+" deleted", msg)
}

func TestHealth(t *testing.T) {
	c, app := newServer(t)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, technotes.BackendMemory, health.Backend)

	app.SetReadOnly(true)
	health, err = c.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.ReadOnly)

	_, err = c.CreateUser(context.Background(), "carol", nil)
	var statusErr *client.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}
