package technotes

// Command represents a discrete application operation with its specific
// configuration. Commands are produced by [Parse] and dispatched by [Main] to
// the matching method on [App].
type Command interface {
	// Name returns the CLI subcommand that produced the command.
	Name() string
}

// MigrateCommand creates the schema: tables where the backend has them and
// the unique indexes on note titles and usernames. It is idempotent.
//
//	technotes -store postgres migrate
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string {
	return "migrate"
}

// RunCommand starts the HTTP server. It migrates the store first, so a fresh
// database is usable without a separate migrate step.
type RunCommand struct{}

func (c *RunCommand) Name() string {
	return "run"
}

// SyncCommand copies records modified within a time window from one store of
// a cqrs pair to the other.
//
// Direction is "forward" (primary to secondary) or "reverse". Since and Until
// are RFC3339 timestamps; empty values default to 24 hours ago and now.
//
//	technotes -store cqrs sync -sync-since 2024-01-01T00:00:00Z
type SyncCommand struct {
	Direction string
	Since     string
	Until     string
}

func (c *SyncCommand) Name() string {
	return "sync"
}
