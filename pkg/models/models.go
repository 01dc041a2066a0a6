package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultRole is assigned to users created without roles.
const DefaultRole = "Employee"

// User is the owner of notes.
type User struct {
	ID        UserID    `gorm:"type:uuid;primary_key" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Roles     []string  `gorm:"serializer:json;not null" json:"roles"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate hook to generate ID if not set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID.IsZero() {
		u.ID = NewUserID()
	}
	return nil
}

// Note is a titled piece of text assigned to a user.
type Note struct {
	ID        NoteID    `gorm:"type:uuid;primary_key" json:"id"`
	UserID    UserID    `gorm:"type:uuid;not null;index" json:"user"`
	Title     string    `gorm:"uniqueIndex;not null" json:"title"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate hook to generate ID if not set
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID.IsZero() {
		n.ID = NewNoteID()
	}
	return nil
}

// NoteWithUsername is a note as listed to clients, carrying the owner's
// username. Username is nil when the owner no longer exists.
type NoteWithUsername struct {
	Note
	Username *string `json:"username"`
}

// WithUsernames attaches usernames from users to each note. Notes whose owner
// is missing from users get a nil Username.
func WithUsernames(notes []*Note, users []*User) []NoteWithUsername {
	names := make(map[UserID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	out := make([]NoteWithUsername, 0, len(notes))
	for _, n := range notes {
		item := NoteWithUsername{Note: *n}
		if name, ok := names[n.UserID]; ok {
			item.Username = &name
		}
		out = append(out, item)
	}
	return out
}

// OwnerIDs returns the distinct owners of notes in first-seen order.
func OwnerIDs(notes []*Note) []UserID {
	seen := make(map[UserID]struct{}, len(notes))
	ids := make([]UserID, 0, len(notes))
	for _, n := range notes {
		if _, ok := seen[n.UserID]; ok {
			continue
		}
		seen[n.UserID] = struct{}{}
		ids = append(ids, n.UserID)
	}
	return ids
}
