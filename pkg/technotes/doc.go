// Package technotes is the technotes HTTP API: notes owned by users, kept in
// a document store.
//
// [Main] parses flags and environment, connects the configured store and runs
// one of three commands:
//
//	run      serve HTTP (see [App.Handler] for the routes)
//	migrate  create the unique indexes
//	sync     catch up one store of a cqrs pair with the other
//
// # Environment Variables
//
//	PORT                - listen port (default 3500)
//	APP_ENV             - development logs at debug level (alias NODE_ENV)
//	STORE_BACKEND       - surrealdb, postgres, memory or cqrs (default surrealdb)
//	DATABASE_URI        - SurrealDB WebSocket URL (default ws://localhost:8000/rpc)
//	SURREALDB_NS        - namespace (default technotes)
//	SURREALDB_DB        - database (default technotes)
//	SURREALDB_USER      - user (default root)
//	SURREALDB_PASS      - password (default root)
//	POSTGRES_DSN        - PostgreSQL DSN
//	CQRS_MODE           - single, read_only, switching or reversed
//	CORS_ORIGINS        - comma-separated allowed origins
//	LOG_DIR             - directory of reqLog.log, errLog.log and dbErrLog.log
//	PUBLIC_DIR          - static files
//	VIEWS_DIR           - index.html and 404.html
//	DB_CONNECT_RETRIES  - connection attempts after the first (default 5)
//	DB_HEALTH_INTERVAL  - period of the background store ping (default 30s)
//
// Variables may also come from a .env file (flag -env-file).
//
// # Errors
//
// Handlers return errors instead of writing failure responses. Validation,
// conflict and not-found errors carry their status and message; a read-only
// store answers 503; anything else is a 500 with isError set. All of them are
// logged to errLog.log.
package technotes
