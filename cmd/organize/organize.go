package organize

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/subcommands"
	"github.com/nrtkbb/automove/app"
	"github.com/nrtkbb/automove/cmd/version"
	"github.com/nrtkbb/automove/logging"
	"github.com/nrtkbb/automove/models"
	"github.com/nrtkbb/automove/organizer"
)

type Command struct {
	logName   string
	logAppend bool
	historyDB string
	traceFile string
}

func (*Command) Name() string     { return "organize" }
func (*Command) Synopsis() string { return "Move pictures and videos into year/month folders" }
func (*Command) Usage() string {
	return `organize [-log-name <file>] [-log-append] [-history <database>] [-trace <file>] sourcePicturesDir destinationAutoSortDir [ageCutoffMonths]:
  Recursively move media files from sourcePicturesDir into
  destinationAutoSortDir/{year}/{year}-{MM} {Month}, skipping files created
  more than ageCutoffMonths (default 6) months ago. Empty source directories
  are removed. Logs are written to destinationAutoSortDir/logs.

  The command name may be left out: "automove [flags] SRC DEST [MONTHS]".
  In that form a SRC spelled like a command (history, migrate, ...) is read
  as the command unless both SRC and DEST are existing directories; write
  "./history" or use "automove organize ..." to be explicit.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.logName, "log-name", "", "fixed log file name (default: timestamped per run)")
	f.BoolVar(&c.logAppend, "log-append", false, "append to the fixed log file instead of truncating it")
	f.StringVar(&c.historyDB, "history", "", "SQLite database recording a summary of each run")
	f.StringVar(&c.traceFile, "trace", "", "write OpenTelemetry spans to this file")
}

func (c *Command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 2 || len(args) > 3 {
		f.Usage()
		return subcommands.ExitSuccess
	}

	cfg, err := c.config(args)
	if err != nil {
		log.Printf("%v", err)
		f.Usage()
		return subcommands.ExitUsageError
	}

	rc := app.NewRunContext(ctx, cfg)
	rc.Version = version.Version
	defer rc.PerformCleanup()

	now := time.Now()
	if err := rc.Prepare(now, os.Stdout); err != nil {
		log.Printf("Fatal: %v", err)
		return subcommands.ExitFailure
	}

	o := organizer.New(cfg, rc.Log, organizer.WithClock(func() time.Time { return now }))
	stats, err := o.Run(ctx)
	if err != nil {
		return subcommands.ExitFailure
	}
	rc.Record(stats, time.Now())

	return subcommands.ExitSuccess
}

func (c *Command) config(args []string) (*models.Config, error) {
	src, err := filepath.Abs(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid source directory %q: %w", args[0], err)
	}
	dest, err := filepath.Abs(args[1])
	if err != nil {
		return nil, fmt.Errorf("invalid destination directory %q: %w", args[1], err)
	}

	months := models.DefaultCutoffMonths
	if len(args) == 3 {
		months, err = strconv.Atoi(args[2])
		if err != nil || months < 0 {
			return nil, fmt.Errorf("ageCutoffMonths must be a non-negative integer, got %q", args[2])
		}
	}

	if err := (logging.Policy{Name: c.logName}).Validate(); err != nil {
		return nil, err
	}

	return &models.Config{
		SourceDir:    src,
		DestDir:      dest,
		CutoffMonths: months,
		LogName:      c.logName,
		LogAppend:    c.logAppend,
		HistoryDB:    c.historyDB,
		TraceFile:    c.traceFile,
	}, nil
}
