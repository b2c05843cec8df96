package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// discMarkerExpr finds a trailing disc marker inside a folder name, eg
// " Disc 1", " (CD2)", " part 3". Group 3 is the disc word itself.
var discMarkerExpr = regexp.MustCompile(`(?i)( )?([(\[{ ])?(disc|disk|cd|part)( ?)(\d{1,2})([)\]}])?`)

// trailingTagExpr strips leftover bracketed tags like " [FLAC]" once the
// disc marker is gone.
var trailingTagExpr = regexp.MustCompile(` \[\w+\]`)

type discGroup struct {
	container string
	discs     map[string]string // folder name -> current path
}

// AssembleDiscs detects sibling directories that are discs of one
// multi-disc release. With apply set, each group's discs are moved under a
// created container directory and the working list is rewritten to hold
// the container instead. Without apply, the matched disc entries are only
// dropped from the working list, so unmaterialized disc folders don't show
// up as per-disc naming violations. A lone matching directory is noise,
// not a disc set, and is left alone.
func AssembleDiscs(dirs []string, apply bool) ([]string, error) {
	groups := map[string]*discGroup{}
	matched := map[string]string{} // dir -> group key

	for _, dir := range dirs {
		parent, folder := filepath.Dir(dir), filepath.Base(dir)

		idx := discMarkerExpr.FindStringSubmatchIndex(folder)
		if idx == nil {
			continue
		}
		// an alphanumeric char right before the disc word means it's
		// embedded in a larger token, not a marker
		if start := idx[6]; start > 0 && isAlnum(folder[start-1]) {
			continue
		}

		name := strings.Replace(folder, folder[idx[0]:idx[1]], "", 1)
		name = trailingTagExpr.ReplaceAllString(name, "")
		container := filepath.Join(parent, name)

		key := strings.ToLower(container)
		g, ok := groups[key]
		if !ok {
			g = &discGroup{container: container, discs: map[string]string{}}
			groups[key] = g
		}
		g.discs[folder] = dir
		matched[dir] = key
	}

	for key, g := range groups {
		if len(g.discs) < 2 {
			delete(groups, key)
		}
	}

	if apply {
		for _, key := range sortedKeys(groups) {
			g := groups[key]
			if err := os.MkdirAll(g.container, 0o755); err != nil {
				return nil, fmt.Errorf("create container: %w", err)
			}
			for _, folder := range sortedKeys(g.discs) {
				src := g.discs[folder]
				if err := os.Rename(src, filepath.Join(g.container, folder)); err != nil {
					return nil, fmt.Errorf("move disc into container: %w", err)
				}
			}
		}
	}

	var out []string
	seen := map[string]struct{}{}
	for _, dir := range dirs {
		key, ok := matched[dir]
		if !ok || groups[key] == nil {
			out = append(out, dir)
			continue
		}
		if !apply {
			continue
		}
		if _, done := seen[key]; done {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, groups[key].container)
	}
	return out, nil
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
