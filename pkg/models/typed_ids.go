package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// SurrealDB uses CBOR tag 8 for RecordID values.
const recordIDTag = 8

// Storage tables for each typed ID.
const (
	UsersTable = "users"
	NotesTable = "notes"
)

// UserID is a typed ID for users
type UserID struct {
	uuid uuid.UUID
}

func NewUserID() UserID {
	return UserID{uuid: uuid.New()}
}

func NewUserIDFromUUID(id uuid.UUID) UserID {
	return UserID{uuid: id}
}

func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("invalid user ID: %w", err)
	}
	return UserID{uuid: id}, nil
}

func (u UserID) UUID() uuid.UUID { return u.uuid }
func (u UserID) String() string  { return u.uuid.String() }
func (u UserID) IsZero() bool    { return u.uuid == uuid.Nil }

func (u UserID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.NewRecordID(UsersTable, u.uuid.String())
}

func (u UserID) MarshalJSON() ([]byte, error) { return marshalJSONID(u.uuid) }

func (u *UserID) UnmarshalJSON(data []byte) error { return unmarshalJSONID(data, &u.uuid) }

func (u UserID) MarshalCBOR() ([]byte, error) { return marshalCBORID(UsersTable, u.uuid) }

func (u *UserID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, UsersTable, &u.uuid)
}

func (u UserID) Value() (driver.Value, error) { return valueID(u.uuid) }

func (u *UserID) Scan(value any) error { return scanUUID(value, &u.uuid) }

func (UserID) GormDataType() string { return "uuid" }

// NoteID is a typed ID for notes
type NoteID struct {
	uuid uuid.UUID
}

func NewNoteID() NoteID {
	return NoteID{uuid: uuid.New()}
}

func NewNoteIDFromUUID(id uuid.UUID) NoteID {
	return NoteID{uuid: id}
}

func ParseNoteID(s string) (NoteID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NoteID{}, fmt.Errorf("invalid note ID: %w", err)
	}
	return NoteID{uuid: id}, nil
}

func (n NoteID) UUID() uuid.UUID { return n.uuid }
func (n NoteID) String() string  { return n.uuid.String() }
func (n NoteID) IsZero() bool    { return n.uuid == uuid.Nil }

func (n NoteID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.NewRecordID(NotesTable, n.uuid.String())
}

func (n NoteID) MarshalJSON() ([]byte, error) { return marshalJSONID(n.uuid) }

func (n *NoteID) UnmarshalJSON(data []byte) error { return unmarshalJSONID(data, &n.uuid) }

func (n NoteID) MarshalCBOR() ([]byte, error) { return marshalCBORID(NotesTable, n.uuid) }

func (n *NoteID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, NotesTable, &n.uuid)
}

func (n NoteID) Value() (driver.Value, error) { return valueID(n.uuid) }

func (n *NoteID) Scan(value any) error { return scanUUID(value, &n.uuid) }

func (NoteID) GormDataType() string { return "uuid" }

func marshalJSONID(id uuid.UUID) ([]byte, error) {
	return json.Marshal(id.String())
}

func unmarshalJSONID(data []byte, target *uuid.UUID) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	*target = id
	return nil
}

func valueID(id uuid.UUID) (driver.Value, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return id.String(), nil
}

func scanUUID(value any, target *uuid.UUID) error {
	if value == nil {
		*target = uuid.Nil
		return nil
	}

	switch v := value.(type) {
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return err
		}
		*target = id
	case []byte:
		id, err := uuid.ParseBytes(v)
		if err != nil {
			return err
		}
		*target = id
	default:
		return fmt.Errorf("cannot scan type %T into UUID", value)
	}
	return nil
}

func marshalCBORID(table string, id uuid.UUID) ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  recordIDTag,
		Content: []any{table, id.String()},
	})
}

// unmarshalCBORID decodes a RecordID encoded as tag 8 around [table, id]
// and rejects records from any table other than expectedTable.
func unmarshalCBORID(data []byte, expectedTable string, target *uuid.UUID) error {
	if len(data) == 0 {
		return fmt.Errorf("empty CBOR data")
	}

	// major type 6 is a tag
	if majorType := data[0] >> 5; majorType != 6 {
		return fmt.Errorf("expected CBOR tag for RecordID, got major type %d", majorType)
	}

	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("failed to unmarshal CBOR tag: %w", err)
	}
	if tag.Number != recordIDTag {
		return fmt.Errorf("expected RecordID tag (%d), got %d", recordIDTag, tag.Number)
	}

	arr, ok := tag.Content.([]any)
	if !ok || len(arr) != 2 {
		return fmt.Errorf("invalid RecordID format: expected [table, id] array")
	}

	table, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: table name must be string")
	}
	if table != expectedTable {
		return fmt.Errorf("expected table %s, got %s", expectedTable, table)
	}

	idStr, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: ID must be string")
	}

	parsed, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid UUID in RecordID: %w", err)
	}
	*target = parsed
	return nil
}
