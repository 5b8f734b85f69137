package migrate

import (
	"context"
	"flag"
	"log"

	"github.com/google/subcommands"
	"github.com/nrtkbb/automove/db"
)

type Command struct {
	dbPath string
}

func (*Command) Name() string     { return "migrate" }
func (*Command) Synopsis() string { return "Apply run history database migrations" }
func (*Command) Usage() string {
	return `migrate -db <database>:
  Create or upgrade the run history schema in the specified SQLite database.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dbPath, "db", "", "database file path (required)")
}

func (c *Command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.dbPath == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	log.Printf("Applying run history migrations to %s...", c.dbPath)
	if err := db.RunMigrations(c.dbPath); err != nil {
		log.Printf("Failed to migrate history database: %v", err)
		return subcommands.ExitFailure
	}
	version, dirty, err := db.SchemaVersion(c.dbPath)
	if err != nil {
		log.Printf("Failed to read schema version: %v", err)
		return subcommands.ExitFailure
	}
	if dirty {
		log.Printf("History database is at version %d but marked dirty", version)
		return subcommands.ExitFailure
	}
	log.Printf("History database is at schema version %d", version)

	return subcommands.ExitSuccess
}
