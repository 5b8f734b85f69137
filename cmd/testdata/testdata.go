package testdata

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/subcommands"
)

type Command struct {
	outputDir string
}

func (*Command) Name() string     { return "testdata" }
func (*Command) Synopsis() string { return "Generate a sample picture tree to organize" }
func (*Command) Usage() string {
	return `testdata -out <directory>:
  Generate a source directory with pictures, videos and other files for trying
  the organize command. Modification times are spread over recent weeks;
  creation times are whatever the filesystem records when the files are made.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputDir, "out", "", "output directory path (required)")
}

func (c *Command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.outputDir == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	count, err := generateTestData(c.outputDir, time.Now())
	if err != nil {
		log.Printf("Failed to generate test data: %v", err)
		return subcommands.ExitFailure
	}
	log.Printf("Generated %d files in %s", count, c.outputDir)

	return subcommands.ExitSuccess
}

type sampleFile struct {
	path    string
	content string
	age     time.Duration
}

var samples = []sampleFile{
	{"DCIM/100CANON/IMG_0001.JPG", "canon jpeg 1\n", 2 * time.Hour},
	{"DCIM/100CANON/IMG_0002.JPG", "canon jpeg 2\n", 3 * time.Hour},
	{"DCIM/100CANON/MVI_0003.MOV", "canon movie\n", 4 * time.Hour},
	{"DCIM/100CANON/IMG_0001.xmp", "<x:xmpmeta/>\n", 2 * time.Hour},
	{"Phone/Camera/IMG_0001.jpg", "phone jpeg\n", 24 * time.Hour},
	{"Phone/Camera/VID_0002.avi", "phone video\n", 30 * time.Hour},
	{"Phone/Screenshots/screen.png", "png\n", 48 * time.Hour},
	{"Phone/Screenshots/screen.jpeg", "jpeg\n", 49 * time.Hour},
	// Same name, content and modification time as a file above: a duplicate.
	{"Backup/IMG_0001.jpg", "phone jpeg\n", 24 * time.Hour},
	// Same name, different modification time: one of the pair gets a _0 suffix.
	{"Backup/IMG_0002.JPG", "older canon jpeg 2\n", 5 * 24 * time.Hour},
	{"Documents/notes.txt", "not a picture\n", 72 * time.Hour},
	{"Documents/clip.mp4", "unsupported video\n", 72 * time.Hour},
}

func generateTestData(outputDir string, now time.Time) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(outputDir, "Empty", "Nested"), 0755); err != nil {
		return 0, fmt.Errorf("failed to create empty directory: %w", err)
	}

	for _, s := range samples {
		path := filepath.Join(outputDir, filepath.FromSlash(s.path))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return 0, fmt.Errorf("failed to create directory for %s: %w", s.path, err)
		}
		if err := os.WriteFile(path, []byte(s.content), 0644); err != nil {
			return 0, fmt.Errorf("failed to create file %s: %w", s.path, err)
		}
		mtime := now.Add(-s.age).Truncate(time.Second)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			return 0, fmt.Errorf("failed to set times of %s: %w", s.path, err)
		}
	}
	return len(samples), nil
}
