package history

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/subcommands"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nrtkbb/automove/db"
	"github.com/nrtkbb/automove/models"
)

type Command struct {
	dbPath string
	limit  int
	out    io.Writer
}

func (*Command) Name() string     { return "history" }
func (*Command) Synopsis() string { return "Show recent runs recorded with -history" }
func (*Command) Usage() string {
	return `history -db <database> [-limit <n>]:
  Print a summary of the most recent organize runs, newest first.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dbPath, "db", "", "database file path (required)")
	f.IntVar(&c.limit, "limit", 20, "number of runs to show")
}

func (c *Command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.dbPath == "" || c.limit < 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if _, err := os.Stat(c.dbPath); err != nil {
		log.Printf("History database not found: %v", err)
		return subcommands.ExitFailure
	}

	database, err := db.SetupDatabase(c.dbPath)
	if err != nil {
		log.Printf("Failed to setup database: %v", err)
		return subcommands.ExitFailure
	}
	defer database.Close()

	runs, err := db.ListRuns(ctx, database, c.limit)
	if err != nil {
		log.Printf("Failed to list runs: %v", err)
		return subcommands.ExitFailure
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	if err := printRuns(out, runs); err != nil {
		log.Printf("Failed to print runs: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printRuns(w io.Writer, runs []models.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Run", "Started", "Duration", "Moved", "Renamed", "Duplicates", "Too old", "Failures", "Source"})
	for _, r := range runs {
		s := r.Stats
		tw.AppendRow(table.Row{
			r.RunID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).String(),
			s.Moved, s.Renamed, s.Duplicates, s.TooOld, s.Failures,
			r.SourceDir,
		})
	}

	columnConfigs := make([]table.ColumnConfig, 0, 5)
	for col := 4; col <= 8; col++ {
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      col,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	_, err := fmt.Fprintln(w, tw.Render())
	return err
}
