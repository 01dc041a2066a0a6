// Package technotestesting simulates technotes users for end-to-end and load
// tests.
//
// A [VirtualUser] drives the REST API through [client.Client]: it registers a
// user, then creates, edits, completes and deletes notes, remembering what it
// did so that [VirtualUser.VerifyAllData] can check the server agrees.
// Behaviour is deterministic for a given index, so failing scenarios replay
// exactly. Even indices lean toward creating notes and odd indices toward
// deleting them.
//
//	vu := technotestesting.NewVirtualUser(0, "http://localhost:3500")
//	if err := vu.RunScenario(ctx); err != nil {
//		t.Fatalf("virtual user scenario failed: %v", err)
//	}
//
// Many virtual users can run concurrently against one server. Note titles
// embed the user's index and a per-run suffix, so they never collide with each
// other; collisions within one user are exercised deliberately and must be
// answered with 409.
package technotestesting

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/technotes/technotes/pkg/client"
	"github.com/technotes/technotes/pkg/models"
)

// VirtualUser is a stateful simulated user of the technotes API.
type VirtualUser struct {
	Index    int // Virtual user index (0, 1, 2...) - NOT the database user ID
	Username string
	Client   *client.Client
	RNG      *rand.Rand // Deterministic random number generator seeded with Index

	UserID models.UserID

	// Notes created by this user that still exist, by ID.
	Notes        map[models.NoteID]*models.Note
	DeletedNotes []models.NoteID

	mu sync.RWMutex
}

func NewVirtualUser(index int, baseURL string) *VirtualUser {
	return &VirtualUser{
		Index: index,
		// timestamp keeps usernames unique across runs against one database
		Username: fmt.Sprintf("vu%d-%d", index, time.Now().UnixNano()),
		Client:   client.NewClient(baseURL),
		RNG:      rand.New(rand.NewSource(int64(index))),
		Notes:    make(map[models.NoteID]*models.Note),
	}
}

// SignUp creates the user this virtual user acts as.
func (vu *VirtualUser) SignUp(ctx context.Context) error {
	id, err := vu.Client.CreateUser(ctx, vu.Username, nil)
	if err != nil {
		return fmt.Errorf("virtual user %d signup failed: %w", vu.Index, err)
	}

	vu.mu.Lock()
	vu.UserID = id
	vu.mu.Unlock()
	return nil
}

func (vu *VirtualUser) title(i int) string {
	return fmt.Sprintf("%s note %d", vu.Username, i)
}

func (vu *VirtualUser) CreateNote(ctx context.Context, title, text string) (*models.Note, error) {
	id, err := vu.Client.CreateNote(ctx, vu.UserID, title, text)
	if err != nil {
		return nil, fmt.Errorf("virtual user %d failed to create note %q: %w", vu.Index, title, err)
	}

	note := &models.Note{ID: id, UserID: vu.UserID, Title: title, Text: text}
	vu.mu.Lock()
	vu.Notes[id] = note
	vu.mu.Unlock()
	return note, nil
}

// CreateDuplicateNote tries to reuse title and expects a conflict.
func (vu *VirtualUser) CreateDuplicateNote(ctx context.Context, title string) error {
	_, err := vu.Client.CreateNote(ctx, vu.UserID, title, "duplicate")
	if client.IsConflict(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("virtual user %d duplicate note %q: %w", vu.Index, title, err)
	}
	return fmt.Errorf("virtual user %d: duplicate note %q was accepted", vu.Index, title)
}

func (vu *VirtualUser) UpdateNote(ctx context.Context, note *models.Note, text string, completed bool) error {
	updated := *note
	updated.Text = text
	updated.Completed = completed
	if _, err := vu.Client.UpdateNote(ctx, &updated); err != nil {
		return fmt.Errorf("virtual user %d failed to update note %s: %w", vu.Index, note.ID, err)
	}

	vu.mu.Lock()
	*note = updated
	vu.mu.Unlock()
	return nil
}

func (vu *VirtualUser) DeleteNote(ctx context.Context, id models.NoteID) error {
	if _, err := vu.Client.DeleteNote(ctx, id); err != nil {
		return fmt.Errorf("virtual user %d failed to delete note %s: %w", vu.Index, id, err)
	}

	vu.mu.Lock()
	delete(vu.Notes, id)
	vu.DeletedNotes = append(vu.DeletedNotes, id)
	vu.mu.Unlock()
	return nil
}

// VerifyAllData checks that the server lists exactly the notes this user
// still has, with their latest content and this user's username.
func (vu *VirtualUser) VerifyAllData(ctx context.Context) error {
	listed, err := vu.Client.ListNotes(ctx)
	if err != nil {
		return fmt.Errorf("virtual user %d failed to list notes: %w", vu.Index, err)
	}

	vu.mu.RLock()
	defer vu.mu.RUnlock()

	found := 0
	for _, n := range listed {
		if n.UserID != vu.UserID {
			continue
		}
		found++
		want, ok := vu.Notes[n.ID]
		if !ok {
			return fmt.Errorf("virtual user %d: unexpected note %s %q", vu.Index, n.ID, n.Title)
		}
		if n.Title != want.Title || n.Text != want.Text || n.Completed != want.Completed {
			return fmt.Errorf("virtual user %d note %s mismatch: expected %q/%q/%t, got %q/%q/%t",
				vu.Index, n.ID, want.Title, want.Text, want.Completed, n.Title, n.Text, n.Completed)
		}
		if n.Username == nil || *n.Username != vu.Username {
			return fmt.Errorf("virtual user %d note %s has wrong username", vu.Index, n.ID)
		}
	}
	if found != len(vu.Notes) {
		return fmt.Errorf("virtual user %d note count mismatch: expected %d, got %d", vu.Index, len(vu.Notes), found)
	}

	for _, id := range vu.DeletedNotes {
		if _, ok := vu.Notes[id]; ok {
			return fmt.Errorf("virtual user %d: deleted note %s still tracked", vu.Index, id)
		}
	}
	return nil
}

// Cleanup deletes every remaining note, then the user.
func (vu *VirtualUser) Cleanup(ctx context.Context) error {
	vu.mu.RLock()
	ids := make([]models.NoteID, 0, len(vu.Notes))
	for id := range vu.Notes {
		ids = append(ids, id)
	}
	vu.mu.RUnlock()

	for _, id := range ids {
		if err := vu.DeleteNote(ctx, id); err != nil {
			return err
		}
	}
	if _, err := vu.Client.DeleteUser(ctx, vu.UserID); err != nil {
		return fmt.Errorf("virtual user %d failed to delete itself: %w", vu.Index, err)
	}
	return nil
}

// RunScenario signs up, performs a deterministic mix of note operations and
// verifies the result.
func (vu *VirtualUser) RunScenario(ctx context.Context) error {
	if err := vu.SignUp(ctx); err != nil {
		return err
	}

	createBias := vu.Index%2 == 0

	numNotes := vu.RNG.Intn(8) + 2
	for i := 0; i < numNotes; i++ {
		note, err := vu.CreateNote(ctx, vu.title(i), fmt.Sprintf("text %d-%d", vu.Index, i))
		if err != nil {
			return err
		}

		// Sometimes retry the same title (20% chance)
		if vu.RNG.Float32() < 0.2 {
			if err := vu.CreateDuplicateNote(ctx, note.Title); err != nil {
				return err
			}
		}

		// Sometimes edit and complete (40% chance)
		if vu.RNG.Float32() < 0.4 {
			text := fmt.Sprintf("updated %d-%d at iteration %d", vu.Index, i, vu.RNG.Intn(100))
			if err := vu.UpdateNote(ctx, note, text, vu.RNG.Intn(2) == 0); err != nil {
				return err
			}
		}

		deleteChance := float32(0.05)
		if !createBias {
			deleteChance = 0.3
		}
		if vu.RNG.Float32() < deleteChance {
			if err := vu.DeleteNote(ctx, note.ID); err != nil {
				return err
			}
		}
	}

	return vu.VerifyAllData(ctx)
}
