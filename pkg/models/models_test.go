package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithUsernames(t *testing.T) {
	alice := &User{ID: NewUserID(), Username: "alice"}
	bob := &User{ID: NewUserID(), Username: "bob"}
	gone := NewUserID()

	notes := []*Note{
		{ID: NewNoteID(), UserID: alice.ID, Title: "a"},
		{ID: NewNoteID(), UserID: gone, Title: "b"},
		{ID: NewNoteID(), UserID: bob.ID, Title: "c"},
	}

	listed := WithUsernames(notes, []*User{bob, alice})
	require.Len(t, listed, 3)

	require.NotNil(t, listed[0].Username)
	assert.Equal(t, "alice", *listed[0].Username)
	assert.Nil(t, listed[1].Username)
	require.NotNil(t, listed[2].Username)
	assert.Equal(t, "bob", *listed[2].Username)
}

func TestNoteWithUsernameJSON(t *testing.T) {
	owner := NewUserID()
	note := NoteWithUsername{Note: Note{ID: NewNoteID(), UserID: owner, Title: "Shopping", Text: "milk"}}

	data, err := json.Marshal(note)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Shopping", decoded["title"])
	assert.Equal(t, owner.String(), decoded["user"])
	assert.Equal(t, false, decoded["completed"])
	assert.Contains(t, decoded, "username")
	assert.Nil(t, decoded["username"])
}

func TestOwnerIDs(t *testing.T) {
	a, b := NewUserID(), NewUserID()
	notes := []*Note{{UserID: a}, {UserID: b}, {UserID: a}}

	assert.Equal(t, []UserID{a, b}, OwnerIDs(notes))
	assert.Empty(t, OwnerIDs(nil))
}
