package app

import (
	"context"
	"database/sql"
	"io"
	"log"
	"sync"
	"time"

	"github.com/nrtkbb/automove/db"
	"github.com/nrtkbb/automove/logging"
	"github.com/nrtkbb/automove/models"
	"github.com/nrtkbb/automove/organizer"
	"github.com/nrtkbb/automove/telemetry"
)

// RunContext owns the resources of a single sort run. PerformCleanup
// releases them exactly once.
type RunContext struct {
	Config   *models.Config
	Log      *logging.RunLog
	DB       *sql.DB
	Context  context.Context
	Shutdown telemetry.ShutdownFunc
	Version  string
	Cleanup  sync.Once
}

func NewRunContext(parentCtx context.Context, cfg *models.Config) *RunContext {
	return &RunContext{
		Config:  cfg,
		Context: parentCtx,
		Version: "dev",
	}
}

// Prepare checks the directories and opens the run log, the history database
// and the tracer, in that order. Any error is fatal for the run; whatever was
// opened before it is released by PerformCleanup.
func (rc *RunContext) Prepare(now time.Time, console io.Writer) error {
	if err := organizer.ValidateDirs(rc.Config); err != nil {
		return err
	}

	runLog, err := logging.Open(rc.Config.LogDir(), logging.Policy{
		Name:   rc.Config.LogName,
		Append: rc.Config.LogAppend,
	}, now, console)
	if err != nil {
		return err
	}
	rc.Log = runLog

	if rc.Config.HistoryDB != "" {
		database, err := db.SetupDatabase(rc.Config.HistoryDB)
		if err != nil {
			return err
		}
		rc.DB = database
	}

	shutdown, err := telemetry.InitTracer(rc.Config.TraceFile, rc.Version)
	if err != nil {
		return err
	}
	rc.Shutdown = shutdown
	return nil
}

// Record stores the run in the history database when one is configured.
func (rc *RunContext) Record(stats models.RunStats, finished time.Time) {
	if rc.DB == nil {
		return
	}
	summary := models.RunSummary{
		StartedAt:    stats.StartTime,
		FinishedAt:   finished,
		SourceDir:    rc.Config.SourceDir,
		DestDir:      rc.Config.DestDir,
		CutoffMonths: rc.Config.CutoffMonths,
		Stats:        stats,
	}
	if rc.Log != nil {
		summary.LogPath = rc.Log.Path()
	}
	id, err := db.RecordRun(rc.Context, rc.DB, summary)
	if err != nil {
		rc.Log.LogError("Could not record run history: %v", err)
		return
	}
	rc.Log.Log("Recorded run %d in %s", id, rc.Config.HistoryDB)
}

func (rc *RunContext) PerformCleanup() {
	rc.Cleanup.Do(func() {
		if rc.Shutdown != nil {
			if err := rc.Shutdown(context.Background()); err != nil {
				log.Printf("Error shutting down tracer provider: %v", err)
			}
		}

		if rc.DB != nil {
			if err := rc.DB.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}

		if rc.Log != nil {
			if err := rc.Log.Close(); err != nil {
				log.Printf("Error closing log file: %v", err)
			}
		}
	})
}
