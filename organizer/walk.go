package organizer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Visitor receives the entries found by Walk. Directories are reported to
// LeaveDir only after every entry below them has been visited.
type Visitor interface {
	SkipDir(path string) bool
	VisitFile(ctx context.Context, path string, d fs.DirEntry)
	LeaveDir(ctx context.Context, path string, isRoot bool)
	DirError(path string, err error)
}

// Walk traverses root depth-first in directory listing order. Only a failure
// to list root itself is returned; errors below it go to the visitor.
func Walk(ctx context.Context, root string, v Visitor) error {
	entries, err := readDir(root)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", root, err)
	}
	walkEntries(ctx, root, entries, v)
	v.LeaveDir(ctx, root, true)
	return nil
}

func walkDir(ctx context.Context, dir string, v Visitor) {
	entries, err := readDir(dir)
	if err != nil {
		v.DirError(dir, err)
		return
	}
	walkEntries(ctx, dir, entries, v)
	v.LeaveDir(ctx, dir, false)
}

func walkEntries(ctx context.Context, dir string, entries []fs.DirEntry, v Visitor) {
	for _, d := range entries {
		path := filepath.Join(dir, d.Name())
		if d.IsDir() {
			if !v.SkipDir(path) {
				walkDir(ctx, path, v)
			}
			continue
		}
		v.VisitFile(ctx, path, d)
	}
}

// readDir lists dir without sorting, unlike os.ReadDir.
func readDir(dir string) ([]fs.DirEntry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.ReadDir(-1)
}
