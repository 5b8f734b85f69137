package models

import (
	"fmt"
	"path/filepath"
	"time"
)

// DefaultCutoffMonths is used when no age cutoff is given on the command line.
const DefaultCutoffMonths = 6

type Config struct {
	SourceDir    string
	DestDir      string
	CutoffMonths int
	LogName      string
	LogAppend    bool
	HistoryDB    string
	TraceFile    string
}

// LogDir is where run logs are written.
func (c *Config) LogDir() string {
	return filepath.Join(c.DestDir, "logs")
}

type FileKind int

const (
	KindOther FileKind = iota
	KindMedia
	KindDirectory
)

type FileEntry struct {
	Path             string
	Name             string
	Kind             FileKind
	CreationTime     time.Time
	ModificationTime time.Time
	// BirthTimeKnown is false when CreationTime was copied from ModificationTime.
	BirthTimeKnown bool
}

// Bucket is the year/month destination of a media file.
type Bucket struct {
	Year  int
	Month time.Month
}

func BucketFor(t time.Time) Bucket {
	return Bucket{Year: t.Year(), Month: t.Month()}
}

func (b Bucket) YearFolder(dest string) string {
	return filepath.Join(dest, fmt.Sprintf("%d", b.Year))
}

// MonthFolder returns {dest}/{Y}/{Y}-{MM} {MonthName}.
func (b Bucket) MonthFolder(dest string) string {
	return filepath.Join(b.YearFolder(dest), fmt.Sprintf("%d-%02d %s", b.Year, int(b.Month), b.Month.String()))
}

type RunStats struct {
	MediaSeen         int64
	Moved             int64
	Renamed           int64
	Duplicates        int64
	TooOld            int64
	Failures          int64
	DirsCreated       int64
	DirsDeleted       int64
	// CreationFallbacks counts media files sorted by modification time
	// because the filesystem recorded no birth time.
	CreationFallbacks int64
	StartTime         time.Time
}

type RunSummary struct {
	RunID        int64
	StartedAt    time.Time
	FinishedAt   time.Time
	SourceDir    string
	DestDir      string
	CutoffMonths int
	LogPath      string
	Stats        RunStats
}
