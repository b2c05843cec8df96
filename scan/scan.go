// Package scan finds release directories in a tree and consolidates
// multi-disc releases.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"go.senan.xyz/natcmp"

	"go.senan.xyz/centrifuge/tags"
)

// discDirExpr matches a directory that is one disc of a multi-disc release,
// eg "Disc 1", "CD2".
var discDirExpr = regexp.MustCompile(`(?i)^(disc|disk|cd) ?\d{1,2}$`)

// maxDiscDirs caps disc grouping so large directory fans aren't
// mis-classified as disc sets.
const maxDiscDirs = 20

// ReleaseDirs walks root depth-first and returns the directories holding
// exactly one release each. A directory with audio files and no
// subdirectories is a release; a directory whose subdirectories are all
// discs of one release is a release too, with the discs as internal detail.
// Anything else is a container to recurse into.
func ReleaseDirs(root string) ([]string, error) {
	var dirs []string
	if err := releaseDirs(root, &dirs); err != nil {
		return nil, err
	}
	return dirs, nil
}

func releaseDirs(dir string, out *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		return natcmp.Compare(a.Name(), b.Name())
	})

	var files, subs []string
	for _, entry := range entries {
		if entry.IsDir() {
			subs = append(subs, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}

	if len(subs) == 0 {
		if hasAudio(files) {
			*out = append(*out, dir)
		}
		return nil
	}

	if allDiscDirs(dir, subs) {
		*out = append(*out, dir)
		return nil
	}

	for _, sub := range subs {
		if err := releaseDirs(filepath.Join(dir, sub), out); err != nil {
			return err
		}
	}
	return nil
}

func hasAudio(files []string) bool {
	for _, f := range files {
		if tags.CanRead(f) {
			return true
		}
	}
	return false
}

func allDiscDirs(dir string, subs []string) bool {
	if len(subs) > maxDiscDirs {
		return false
	}
	for _, sub := range subs {
		if !discDirExpr.MatchString(sub) {
			return false
		}
		entries, err := os.ReadDir(filepath.Join(dir, sub))
		if err != nil {
			return false
		}
		var audio bool
		for _, entry := range entries {
			if !entry.IsDir() && tags.CanRead(entry.Name()) {
				audio = true
				break
			}
		}
		if !audio {
			return false
		}
	}
	return true
}
