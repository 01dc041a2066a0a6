// Package pkg contains the sub-packages of the technotes application.
//
// # Application Layer
//
// [github.com/technotes/technotes/pkg/technotes] - Configuration, commands
// and the HTTP pipeline. Use this package when adding routes or commands.
//
// # Domain Layer
//
// [github.com/technotes/technotes/pkg/models] - Users, notes and their typed
// IDs, shared by every store and by the client.
//
// # Infrastructure Layer
//
// [github.com/technotes/technotes/pkg/store] - The [github.com/technotes/technotes/pkg/store.Store]
// interface, its sentinel errors, the read-only decorator and connection
// retries.
//
// [github.com/technotes/technotes/pkg/store/surrealdb] - SurrealDB over CBOR
// with unique indexes defined in SurrealQL.
//
// [github.com/technotes/technotes/pkg/store/postgres] - PostgreSQL through
// GORM.
//
// [github.com/technotes/technotes/pkg/store/memory] - An in-process store for
// tests and local runs.
//
// [github.com/technotes/technotes/pkg/store/cqrs] - Routes reads and writes
// between two stores while migrating from one to the other.
//
// [github.com/technotes/technotes/pkg/logger] - Durable JSON event logs and
// connection error diagnostics.
//
// # Client and Testing
//
// [github.com/technotes/technotes/pkg/client] - A typed client for the REST
// API.
//
// [github.com/technotes/technotes/pkg/technotestesting] - Virtual users that
// drive the API in end-to-end and load tests.
package pkg
