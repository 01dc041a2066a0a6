// Package technotes is a notes service for a small repair shop: employees
// keep notes, each owned by a user, and managers administer the users.
//
// The service is a JSON REST API over a document store. SurrealDB is the
// default backend; PostgreSQL is supported through GORM, and a cqrs backend
// pairs the two to migrate between them without downtime. An in-memory store
// serves tests and local runs.
//
// # Running
//
//	go run ./cmd/technotes                       # SurrealDB at DATABASE_URI
//	go run ./cmd/technotes -store memory         # no database needed
//	go run ./cmd/technotes -store postgres migrate
//
// Configuration comes from flags, then the environment, then a .env file.
// See [github.com/technotes/technotes/pkg/technotes] for the variables, the
// routes and the error responses.
//
// # Data Model
//
// A note has an owner, a title unique across all notes, a text and a
// completed flag. A user has a unique username, a list of roles and an active
// flag. Uniqueness is enforced by unique indexes in every backend, so
// concurrent creates with one title yield exactly one note. See
// [github.com/technotes/technotes/pkg/models].
//
// # Logs
//
// The server writes three durable JSON logs under LOG_DIR: reqLog.log with one
// line per request, errLog.log with every error returned to a client, and
// dbErrLog.log with store connection failures, each carrying the errno, code,
// syscall and hostname of the failure. Human-oriented progress goes to stderr.
//
// # Testing
//
//	go test ./...                                    # unit tests, no database
//	go test -tags=smoke -run TestE2ESmoke .          # against SMOKE_BASE_URL
//	go test -tags=e2e -run TestE2E_migrationFlow .   # needs PostgreSQL and SurrealDB
package technotes
