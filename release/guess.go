package release

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Category is the kind of release a directory holds.
type Category string

const (
	CategoryAlbum       Category = "Album"
	CategoryEP          Category = "EP"
	CategorySingle      Category = "Single"
	CategoryCompilation Category = "Compilation"
	CategoryMix         Category = "Mix"
	CategorySoundtrack  Category = "Soundtrack"
	CategoryLive        Category = "Live"
	CategoryDemo        Category = "Demo"
)

func Categories() []Category {
	return []Category{
		CategoryAlbum, CategoryEP, CategorySingle, CategoryCompilation,
		CategoryMix, CategorySoundtrack, CategoryLive, CategoryDemo,
	}
}

// Source is the medium a release was ripped or downloaded from.
type Source string

const (
	SourceCD       Source = "CD"
	SourceVinyl    Source = "Vinyl"
	SourceWeb      Source = "Web"
	SourceDVD      Source = "DVD"
	SourceSACD     Source = "SACD"
	SourceCassette Source = "Cassette"
	SourceUnknown  Source = "Unknown"
)

func Sources() []Source {
	return []Source{
		SourceCD, SourceVinyl, SourceWeb, SourceDVD, SourceSACD,
		SourceCassette, SourceUnknown,
	}
}

// SourceFromMedia maps an origin-file media value onto a Source.
func SourceFromMedia(media string) (Source, bool) {
	for _, s := range Sources() {
		if s == SourceUnknown {
			continue
		}
		if strings.EqualFold(media, string(s)) {
			return s, true
		}
	}
	if strings.EqualFold(media, "WEB") {
		return SourceWeb, true
	}
	return SourceUnknown, false
}

var bracketPairs = [][2]string{{"[", "]"}, {"(", ")"}, {"{", "}"}}

// GuessCategory extracts a release category from a path, checking up to
// three ancestor directory names and then the release folder name itself.
// Defaults to Album when nothing matches.
func GuessCategory(path string) Category {
	parents := ancestorNames(path, 3)
	for _, c := range Categories() {
		for _, dir := range parents {
			if strings.EqualFold(dir, string(c)) {
				return c
			}
		}
	}

	name := strings.ToLower(filepath.Base(path))

	// a bracketed "[Category]" tag anywhere in the folder name
	for _, c := range Categories() {
		for _, b := range bracketPairs {
			if strings.Contains(name, b[0]+strings.ToLower(string(c))+b[1]) {
				return c
			}
		}
	}

	// a bare trailing or space-delimited category word, Album excepted
	for _, c := range Categories() {
		if c == CategoryAlbum {
			continue
		}
		lc := strings.ToLower(string(c))
		if strings.HasSuffix(name, " "+lc) || strings.Contains(name, " "+lc+" ") {
			return c
		}
	}

	// a category word mid-name surrounded by common delimiters
	for _, c := range Categories() {
		if c == CategoryAlbum {
			continue
		}
		if delimitedWord(string(c)).MatchString(name) {
			return c
		}
	}

	return CategoryAlbum
}

// GuessSource extracts a release source from a path the same way
// GuessCategory does, defaulting to CD.
func GuessSource(path string) Source {
	parents := ancestorNames(path, 3)
	for _, s := range Sources() {
		for _, dir := range parents {
			if strings.EqualFold(dir, string(s)) {
				return s
			}
		}
	}

	name := strings.ToLower(filepath.Base(path))

	for _, s := range Sources() {
		if s == SourceUnknown {
			continue
		}
		for _, b := range bracketPairs {
			if strings.Contains(name, b[0]+strings.ToLower(string(s))+b[1]) {
				return s
			}
		}
	}

	for _, s := range Sources() {
		if s == SourceUnknown {
			continue
		}
		ls := strings.ToLower(string(s))
		if strings.HasSuffix(name, " "+ls) || strings.Contains(name, " "+ls+" ") {
			return s
		}
	}

	for _, s := range Sources() {
		if s == SourceUnknown || s == SourceCD {
			continue
		}
		if delimitedWord(string(s)).MatchString(name) {
			return s
		}
	}

	return SourceCD
}

func ancestorNames(path string, n int) []string {
	parts := strings.Split(filepath.Clean(path), string(filepath.Separator))
	if len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > n {
		parts = parts[len(parts)-n:]
	}
	var names []string
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			names = append(names, parts[i])
		}
	}
	return names
}

func delimitedWord(word string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)[-_\[{( ]` + regexp.QuoteMeta(word) + `[-_\]}) ]`)
}
