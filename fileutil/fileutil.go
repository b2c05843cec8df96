// Package fileutil has small filesystem helpers shared by the scanner and
// the move engine.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrPathTooLong = errors.New("path too long, cannot shorten further")

var safePathReplacer = strings.NewReplacer(
	"\x00", "",
	string(filepath.Separator), " ",
)

// SafePath renders a string usable as a single path component.
func SafePath(path string) string {
	path = safePathReplacer.Replace(path)
	path = strings.Join(strings.Fields(path), " ")
	return path
}

// CanLock reports whether every file under dir can currently be opened for
// read+write. It modifies nothing. A permission or sharing violation on any
// file means the directory shouldn't be mutated right now.
func CanLock(dir string) (bool, error) {
	var locked bool
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if errors.Is(err, fs.ErrPermission) {
			locked = true
			return fs.SkipAll
		}
		if err != nil {
			return err
		}
		f.Close()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("walk %q: %w", dir, err)
	}
	return !locked, nil
}

// RemoveEmptyParents deletes dir and its ancestors while they are empty,
// stopping at the first non-empty directory or at stop. Files are never
// deleted.
func RemoveEmptyParents(dir, stop string) error {
	stop = filepath.Clean(stop)
	for dir = filepath.Clean(dir); dir != stop && dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("read dir: %w", err)
		}
		if len(entries) > 0 {
			return nil
		}
		if err := os.Remove(dir); err != nil {
			return fmt.Errorf("remove empty dir: %w", err)
		}
	}
	return nil
}

const (
	maxPathLen   = 255
	maxParentLen = 245
	ellipsis     = ".."
)

// EnforceMaxPath truncates the names of entries in dir whose full path
// exceeds 255 characters, keeping the extension and marking the cut with
// "..". If dir itself is already 245 characters or more, or the extension
// leaves no room for any of the stem, there is nothing left to cut and
// ErrPathTooLong is returned. A truncated name that is already taken leaves
// the overlong entry in place.
func EnforceMaxPath(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if len(path) <= maxPathLen {
			continue
		}
		if len(dir) >= maxParentLen {
			return fmt.Errorf("%w: %q", ErrPathTooLong, dir)
		}
		ext := filepath.Ext(entry.Name())
		stem := strings.TrimSuffix(entry.Name(), ext)
		keep := maxPathLen - len(dir) - 1 - len(ellipsis) - len(ext)
		if keep <= 0 {
			// the extension alone fills the budget, nothing to cut
			return fmt.Errorf("%w: %q", ErrPathTooLong, path)
		}
		truncated := filepath.Join(dir, stem[:keep]+ellipsis+ext)
		if _, err := os.Lstat(truncated); err == nil {
			continue
		}
		if err := os.Rename(path, truncated); err != nil {
			return fmt.Errorf("rename overlong entry: %w", err)
		}
	}
	return nil
}
