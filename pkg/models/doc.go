// Package models defines the entities of the technotes API: [User] and [Note].
//
// A note belongs to exactly one user through [Note.UserID]. The relationship is
// stored as a reference and resolved at read time, so deleting a user does not
// cascade to notes and listings tolerate owners that no longer exist.
//
// # Typed IDs
//
// Every entity is keyed by a typed identifier ([UserID], [NoteID]) wrapping a UUID.
// The compiler keeps the two apart, and each type knows its storage table, which
// lets one model definition serve every backend:
//
//   - JSON: the canonical UUID string
//   - SurrealDB: a RecordID (CBOR tag 8 holding [table, id])
//   - PostgreSQL: a uuid column through driver.Valuer and sql.Scanner
//
// # Uniqueness
//
// [Note.Title] and [User.Username] are unique across their collections. The
// GORM tags declare unique indexes for PostgreSQL and the SurrealDB store defines
// the equivalent UNIQUE indexes during migration. Handlers rely on those indexes
// instead of checking for duplicates before writing.
//
// # Timestamps
//
// CreatedAt and UpdatedAt are maintained by the stores. Besides informing clients,
// they drive the catch-up synchronization between two stores.
package models
