package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Policy selects the log file a run writes to. An empty Name produces a new
// timestamped file per run; a fixed Name is truncated unless Append is set.
type Policy struct {
	Name   string
	Append bool
}

// Validate rejects fixed names that would place the log outside the logs
// directory.
func (p Policy) Validate() error {
	if p.Name == "" {
		return nil
	}
	if p.Name == "." || p.Name == ".." || strings.ContainsAny(p.Name, `/\`) || filepath.Base(p.Name) != p.Name {
		return fmt.Errorf("log name %q must be a plain file name", p.Name)
	}
	return nil
}

func (p Policy) FileName(now time.Time) string {
	if p.Name != "" {
		return p.Name
	}
	return "AutoSort_" + now.Format("2006-01-02_15-04-05") + ".log"
}

// RunLog writes every message to the log file and the console.
type RunLog struct {
	logger *log.Logger
	file   *os.File
	path   string
}

// New returns a RunLog that writes only to w.
func New(w io.Writer) *RunLog {
	return &RunLog{logger: log.New(w, "", log.LstdFlags)}
}

// Open creates dir if needed and opens the run log file inside it.
func Open(dir string, p Policy, now time.Time, console io.Writer) (*RunLog, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("logs directory could not be created at %s: %w", dir, err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if p.Name != "" && p.Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	path := filepath.Join(dir, p.FileName(now))
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", path, err)
	}

	w := io.Writer(f)
	if console != nil {
		w = io.MultiWriter(f, console)
	}
	return &RunLog{
		logger: log.New(w, "", log.LstdFlags),
		file:   f,
		path:   path,
	}, nil
}

// Path is empty for a RunLog built with New.
func (l *RunLog) Path() string { return l.path }

func (l *RunLog) Log(format string, args ...interface{}) {
	l.logger.Printf(format, args...)
}

func (l *RunLog) Warn(format string, args ...interface{}) {
	l.logger.Printf("WARNING: "+format, args...)
}

func (l *RunLog) LogError(format string, args ...interface{}) {
	l.logger.Printf("ERROR: "+format, args...)
}

// Close flushes and closes the log file. It is safe to call more than once.
func (l *RunLog) Close() error {
	if l.file == nil {
		return nil
	}
	syncErr := l.file.Sync()
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return err
	}
	return syncErr
}
