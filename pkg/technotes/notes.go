package technotes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/technotes/technotes/pkg/models"
	"github.com/technotes/technotes/pkg/store"
)

// listNotes responds with every note and its owner's username. Owners are
// resolved with one batch lookup; a note whose owner is gone gets a null
// username.
func (a *App) listNotes(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	notes, err := a.store.ListNotes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	var users []*models.User
	if len(notes) > 0 {
		users, err = a.store.GetUsersByIDs(ctx, models.OwnerIDs(notes))
		if err != nil {
			return fmt.Errorf("failed to resolve note owners: %w", err)
		}
	}

	respondJSON(w, http.StatusOK, models.WithUsernames(notes, users))
	return nil
}

// createNote inserts {user, title, text}. Title uniqueness is left to the
// store's unique index.
func (a *App) createNote(w http.ResponseWriter, r *http.Request) error {
	body := bodyFields(r)
	userField, okUser := body.str("user")
	title, okTitle := body.str("title")
	text, okText := body.str("text")
	if !okUser || !okTitle || !okText {
		return validationError("All fields are required")
	}

	userID, err := models.ParseUserID(userField)
	if err != nil {
		return validationError("Invalid note data received")
	}

	note := &models.Note{UserID: userID, Title: title, Text: text}
	if err := a.store.CreateNote(r.Context(), note); err != nil {
		if errors.Is(err, store.ErrDuplicateTitle) {
			return conflictError("Duplicate note title")
		}
		return fmt.Errorf("failed to create note: %w", err)
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "New note created",
		"id":      note.ID,
	})
	return nil
}

// updateNote replaces user, title, text and completed of an existing note.
// completed must be a JSON boolean. An absent text keeps the stored one.
func (a *App) updateNote(w http.ResponseWriter, r *http.Request) error {
	body := bodyFields(r)
	idField, okID := body.str("id")
	userField, okUser := body.str("user")
	title, okTitle := body.str("title")
	completed, okCompleted := body.boolean("completed")
	if !okID || !okUser || !okTitle || !okCompleted {
		return validationError("All fields are required")
	}

	id, err := models.ParseNoteID(idField)
	if err != nil {
		return validationError("Invalid note data received")
	}
	userID, err := models.ParseUserID(userField)
	if err != nil {
		return validationError("Invalid note data received")
	}

	ctx := r.Context()
	note, err := a.store.GetNote(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get note: %w", err)
	}
	if note == nil {
		return notFoundError("Note not found")
	}

	note.UserID = userID
	note.Title = title
	if text, ok := body["text"].(string); ok {
		note.Text = text
	}
	note.Completed = completed

	if err := a.store.UpdateNote(ctx, note); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateTitle):
			return conflictError("Duplicate title")
		case errors.Is(err, store.ErrNotFound):
			return notFoundError("Note not found")
		}
		return fmt.Errorf("failed to update note: %w", err)
	}

	respondMessage(w, http.StatusOK, fmt.Sprintf("%s updated", note.Title))
	return nil
}

// deleteNote removes the note with the given id and names it in the reply.
func (a *App) deleteNote(w http.ResponseWriter, r *http.Request) error {
	idField, ok := bodyFields(r).str("id")
	if !ok {
		return validationError("Note ID required")
	}
	id, err := models.ParseNoteID(idField)
	if err != nil {
		return validationError("Invalid note data received")
	}

	deleted, err := a.store.DeleteNote(r.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if deleted == nil {
		return notFoundError("Note not found")
	}

	respondMessage(w, http.StatusOK, fmt.Sprintf("Note '%s' with ID %s deleted", deleted.Title, deleted.ID))
	return nil
}
