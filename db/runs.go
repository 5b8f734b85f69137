package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nrtkbb/automove/models"
)

// RecordRun stores the outcome of one organizer run and returns its id.
func RecordRun(ctx context.Context, db *sql.DB, run models.RunSummary) (int64, error) {
	s := run.Stats
	result, err := db.ExecContext(ctx, `
		INSERT INTO runs (
			started_at, finished_at, source_dir, dest_dir, cutoff_months, log_path,
			media_seen, moved, renamed, duplicates, too_old, failures,
			dirs_created, dirs_deleted
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.StartedAt.Unix(), run.FinishedAt.Unix(), run.SourceDir, run.DestDir, run.CutoffMonths, run.LogPath,
		s.MediaSeen, s.Moved, s.Renamed, s.Duplicates, s.TooOld, s.Failures,
		s.DirsCreated, s.DirsDeleted,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// ListRuns returns up to limit runs, newest first.
func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]models.RunSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, started_at, finished_at, source_dir, dest_dir, cutoff_months, log_path,
			media_seen, moved, renamed, duplicates, too_old, failures,
			dirs_created, dirs_deleted
		FROM runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RunSummary
	for rows.Next() {
		var run models.RunSummary
		var started, finished int64
		s := &run.Stats
		if err := rows.Scan(
			&run.RunID, &started, &finished, &run.SourceDir, &run.DestDir, &run.CutoffMonths, &run.LogPath,
			&s.MediaSeen, &s.Moved, &s.Renamed, &s.Duplicates, &s.TooOld, &s.Failures,
			&s.DirsCreated, &s.DirsDeleted,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		run.StartedAt = time.Unix(started, 0)
		run.FinishedAt = time.Unix(finished, 0)
		s.StartTime = run.StartedAt
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}
