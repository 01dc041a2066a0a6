package technotes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/technotes/technotes/pkg/models"
	"github.com/technotes/technotes/pkg/store"
)

func (a *App) listUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := a.store.ListUsers(r.Context())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []*models.User{}
	}
	respondJSON(w, http.StatusOK, users)
	return nil
}

// createUser inserts {username, roles}. Roles default to Employee and new
// users are active.
func (a *App) createUser(w http.ResponseWriter, r *http.Request) error {
	body := bodyFields(r)
	username, ok := body.str("username")
	if !ok {
		return validationError("All fields are required")
	}

	roles := []string{models.DefaultRole}
	if body.has("roles") {
		if roles, ok = body.strings("roles"); !ok {
			return validationError("All fields are required")
		}
	}

	user := &models.User{Username: username, Roles: roles, Active: true}
	if err := a.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return conflictError("Duplicate username")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": fmt.Sprintf("New user %s created", username),
		"id":      user.ID,
	})
	return nil
}

func (a *App) updateUser(w http.ResponseWriter, r *http.Request) error {
	body := bodyFields(r)
	idField, okID := body.str("id")
	username, okUsername := body.str("username")
	roles, okRoles := body.strings("roles")
	active, okActive := body.boolean("active")
	if !okID || !okUsername || !okRoles || !okActive {
		return validationError("All fields except password are required")
	}

	id, err := models.ParseUserID(idField)
	if err != nil {
		return validationError("Invalid user data received")
	}

	ctx := r.Context()
	user, err := a.store.GetUser(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return notFoundError("User not found")
	}

	user.Username = username
	user.Roles = roles
	user.Active = active
	if err := a.store.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			return conflictError("Duplicate username")
		case errors.Is(err, store.ErrNotFound):
			return notFoundError("User not found")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	respondMessage(w, http.StatusOK, fmt.Sprintf("%s updated", user.Username))
	return nil
}

// deleteUser removes a user who owns no notes.
func (a *App) deleteUser(w http.ResponseWriter, r *http.Request) error {
	idField, ok := bodyFields(r).str("id")
	if !ok {
		return validationError("User ID Required")
	}
	id, err := models.ParseUserID(idField)
	if err != nil {
		return validationError("Invalid user data received")
	}

	ctx := r.Context()
	notes, err := a.store.ListNotesByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list notes of user: %w", err)
	}
	if len(notes) > 0 {
		return validationError("User has assigned notes")
	}

	deleted, err := a.store.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if deleted == nil {
		return notFoundError("User not found")
	}

	respondMessage(w, http.StatusOK, fmt.Sprintf("Username %s with ID %s deleted", deleted.Username, deleted.ID))
	return nil
}
