package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nrtkbb/automove/models"
)

var mediaSuffixes = []string{".jpg", ".jpeg", ".png", ".mov", ".avi"}

// FileTimes holds the timestamps the organizer sorts and compares by.
type FileTimes struct {
	Birth    time.Time
	Modified time.Time
	HasBirth bool
}

// Creation returns the birth time, or the modification time when the
// filesystem does not record one.
func (t FileTimes) Creation() time.Time {
	if t.HasBirth {
		return t.Birth
	}
	return t.Modified
}

type Reader interface {
	FileTimes(path string) (FileTimes, error)
}

// StatReader reads timestamps from the local filesystem.
type StatReader struct{}

func (StatReader) FileTimes(path string) (FileTimes, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileTimes{}, err
	}
	times := FileTimes{Modified: info.ModTime()}
	if birth, ok := birthTime(path, info); ok {
		times.Birth = birth
		times.HasBirth = true
	}
	return times, nil
}

// IsMedia reports whether name carries one of the picture/video suffixes.
func IsMedia(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range mediaSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func Classify(d fs.DirEntry) models.FileKind {
	switch {
	case d.IsDir():
		return models.KindDirectory
	case d.Type().IsRegular() && IsMedia(d.Name()):
		return models.KindMedia
	default:
		return models.KindOther
	}
}

func CollectEntry(r Reader, path string, kind models.FileKind) (models.FileEntry, error) {
	times, err := r.FileTimes(path)
	if err != nil {
		return models.FileEntry{}, fmt.Errorf("failed to read attributes of %s: %w", path, err)
	}
	return models.FileEntry{
		Path:             path,
		Name:             filepath.Base(path),
		Kind:             kind,
		CreationTime:     times.Creation(),
		ModificationTime: times.Modified,
		BirthTimeKnown:   times.HasBirth,
	}, nil
}
