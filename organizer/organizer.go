package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nrtkbb/automove/models"
	"github.com/nrtkbb/automove/scanner"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const msPerDay = 1000 * 60 * 60 * 24

type Logger interface {
	Log(format string, args ...interface{})
	Warn(format string, args ...interface{})
	LogError(format string, args ...interface{})
}

type Option func(*Organizer)

// WithClock replaces time.Now as the source of "now" for the age filter.
func WithClock(now func() time.Time) Option {
	return func(o *Organizer) { o.clock = now }
}

// WithReader replaces the filesystem attribute provider.
func WithReader(r scanner.Reader) Option {
	return func(o *Organizer) { o.times = r }
}

// Organizer moves media files from the source tree into year/month folders
// below the destination. It is not safe for concurrent use.
type Organizer struct {
	cfg     *models.Config
	log     Logger
	times   scanner.Reader
	clock   func() time.Time
	now     time.Time
	stats   models.RunStats
	folders map[string]bool
	tracer  trace.Tracer
}

func New(cfg *models.Config, log Logger, opts ...Option) *Organizer {
	o := &Organizer{
		cfg:     cfg,
		log:     log,
		times:   scanner.StatReader{},
		clock:   time.Now,
		folders: make(map[string]bool),
		tracer:  otel.Tracer("organizer"),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.now = o.clock()
	return o
}

// ValidateDirs checks that both the source and destination directories exist.
func ValidateDirs(cfg *models.Config) error {
	if err := requireDir(cfg.SourceDir); err != nil {
		return fmt.Errorf("source directory expected to be found at %s: %w", cfg.SourceDir, err)
	}
	if err := requireDir(cfg.DestDir); err != nil {
		return fmt.Errorf("destination directory expected to be found at %s: %w", cfg.DestDir, err)
	}
	return nil
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Run sorts the whole source tree. Per-file failures are logged and counted;
// only a failure to list the source root is returned.
func (o *Organizer) Run(ctx context.Context) (models.RunStats, error) {
	ctx, span := o.tracer.Start(ctx, "organizer.Run", trace.WithAttributes(
		attribute.String("source_dir", o.cfg.SourceDir),
		attribute.String("dest_dir", o.cfg.DestDir),
		attribute.Int("cutoff_months", o.cfg.CutoffMonths),
	))
	defer span.End()

	o.stats.StartTime = o.now
	o.log.Log("Running...")

	err := Walk(ctx, o.cfg.SourceDir, o)
	if err != nil {
		span.RecordError(err)
		o.log.LogError("%v", err)
	}

	s := o.stats
	span.SetAttributes(
		attribute.Int64("moved", s.Moved),
		attribute.Int64("renamed", s.Renamed),
		attribute.Int64("duplicates", s.Duplicates),
		attribute.Int64("too_old", s.TooOld),
		attribute.Int64("failures", s.Failures),
	)
	if s.CreationFallbacks > 0 {
		o.log.Log("No creation time recorded for %d files; sorted them by modification time", s.CreationFallbacks)
	}
	o.log.Log("Finished: moved=%d renamed=%d duplicates=%d too-old=%d failures=%d dirs-created=%d dirs-deleted=%d",
		s.Moved, s.Renamed, s.Duplicates, s.TooOld, s.Failures, s.DirsCreated, s.DirsDeleted)
	return s, err
}

// TooOld reports whether a file created at t is older than the cutoff,
// counting every month as 31 days.
func (o *Organizer) TooOld(t time.Time) bool {
	daysOld := o.now.Sub(t).Milliseconds() / msPerDay
	return daysOld > int64(o.cfg.CutoffMonths)*31
}

// SkipDir keeps the walk out of the destination tree when it lives inside
// the source.
func (o *Organizer) SkipDir(path string) bool {
	return filepath.Clean(path) == filepath.Clean(o.cfg.DestDir)
}

func (o *Organizer) VisitFile(ctx context.Context, path string, d fs.DirEntry) {
	kind := scanner.Classify(d)
	if kind != models.KindMedia {
		return
	}
	o.stats.MediaSeen++

	entry, err := scanner.CollectEntry(o.times, path, kind)
	if err != nil {
		o.fail("%v", err)
		return
	}
	if !entry.BirthTimeKnown {
		o.stats.CreationFallbacks++
	}

	if o.TooOld(entry.CreationTime) {
		o.stats.TooOld++
		o.log.LogError("Skipping: %s because the file is more than %d months old.", entry.Name, o.cfg.CutoffMonths)
		return
	}

	monthFolder, err := o.ensureBucket(models.BucketFor(entry.CreationTime.Local()))
	if err != nil {
		o.fail("Could not prepare folder for %s: %v", entry.Path, err)
		return
	}
	o.place(ctx, entry, monthFolder)
}

func (o *Organizer) LeaveDir(ctx context.Context, path string, isRoot bool) {
	if isRoot {
		return
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		o.fail("Could not list directory: %s: %v", path, err)
		return
	}
	if len(entries) > 0 {
		return
	}
	if err := os.Remove(path); err != nil {
		o.fail("Could not delete directory: %s: %v", path, err)
		return
	}
	o.stats.DirsDeleted++
	o.log.Log("Deleting directory: %s", path)
	trace.SpanFromContext(ctx).AddEvent("dir_deleted", trace.WithAttributes(attribute.String("path", path)))
}

func (o *Organizer) DirError(path string, err error) {
	o.fail("Could not read directory: %s: %v", path, err)
}

func (o *Organizer) fail(format string, args ...interface{}) {
	o.stats.Failures++
	o.log.LogError(format, args...)
}

func (o *Organizer) ensureBucket(b models.Bucket) (string, error) {
	if err := o.ensureDir(b.YearFolder(o.cfg.DestDir)); err != nil {
		return "", err
	}
	monthFolder := b.MonthFolder(o.cfg.DestDir)
	if err := o.ensureDir(monthFolder); err != nil {
		return "", err
	}
	return monthFolder, nil
}

// ensureDir creates path once per run; later calls for the same path are
// answered from the folder cache.
func (o *Organizer) ensureDir(path string) error {
	if o.folders[path] {
		return nil
	}
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		o.folders[path] = true
		return nil
	case err == nil:
		return fmt.Errorf("%s exists and is not a directory", path)
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	if err := os.Mkdir(path, 0755); err != nil {
		return err
	}
	o.folders[path] = true
	o.stats.DirsCreated++
	o.log.Log("Creating directory: %s", path)
	return nil
}

func (o *Organizer) place(ctx context.Context, entry models.FileEntry, monthFolder string) {
	target := filepath.Join(monthFolder, entry.Name)
	if filepath.Clean(target) == filepath.Clean(entry.Path) {
		return
	}

	// A symlink at target, dangling or not, occupies the name.
	info, err := os.Lstat(target)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		o.move(ctx, entry, target, monthFolder)
	case err != nil:
		o.fail("Could not read attributes of %s: %v", target, err)
	case o.isDuplicate(target, info, entry):
		o.deleteDuplicate(ctx, entry, target)
	default:
		unique, err := UniqueName(monthFolder, entry.Name)
		if err != nil {
			o.fail("Could not choose a new name for %s: %v", entry.Path, err)
			return
		}
		o.log.Warn("File already exists: %s, renaming to %s", target, unique)
		if o.move(ctx, entry, filepath.Join(monthFolder, unique), monthFolder) {
			o.stats.Renamed++
		}
	}
}

// isDuplicate reports whether the regular file at target carries the same
// modification time as entry. Anything other than a regular file is never a
// duplicate.
func (o *Organizer) isDuplicate(target string, info fs.FileInfo, entry models.FileEntry) bool {
	if !info.Mode().IsRegular() {
		return false
	}
	existing, err := o.times.FileTimes(target)
	if err != nil {
		return info.ModTime().Equal(entry.ModificationTime)
	}
	return existing.Modified.Equal(entry.ModificationTime)
}

func (o *Organizer) move(ctx context.Context, entry models.FileEntry, target, monthFolder string) bool {
	if err := os.Rename(entry.Path, target); err != nil {
		o.fail("Problem moving: %s to %s: %v", entry.Name, monthFolder, err)
		return false
	}
	o.stats.Moved++
	o.log.Log("Moving: %s to %s", entry.Name, monthFolder)
	trace.SpanFromContext(ctx).AddEvent("moved", trace.WithAttributes(
		attribute.String("source", entry.Path),
		attribute.String("target", target),
	))
	return true
}

func (o *Organizer) deleteDuplicate(ctx context.Context, entry models.FileEntry, target string) {
	if err := os.Remove(entry.Path); err != nil {
		o.fail("Could not delete duplicate: %s: %v", entry.Path, err)
		return
	}
	o.stats.Duplicates++
	o.log.Log("Deleting duplicate: %s already exists at %s", entry.Path, target)
	trace.SpanFromContext(ctx).AddEvent("duplicate_deleted", trace.WithAttributes(attribute.String("source", entry.Path)))
}

// UniqueName returns the first name of the form stem_N.ext, N = 0, 1, 2...,
// that is not taken in dir.
func UniqueName(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		_, err := os.Lstat(filepath.Join(dir, candidate))
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
}
