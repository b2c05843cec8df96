// Package validator checks releases against the tagging convention and
// repairs what it safely can. Fixes never guess: a field is only filled
// when the tracks, the folder name, or the reference catalog agree on an
// answer.
package validator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.senan.xyz/centrifuge/lastfm"
	"go.senan.xyz/centrifuge/release"
)

type Validator struct {
	// Catalog is optional. Without it genre fixes are skipped.
	Catalog *lastfm.Client

	forbiddenCommentSubstrings []string
}

func (v *Validator) AddForbiddenCommentSubstring(substr string) {
	if substr != "" {
		v.forbiddenCommentSubstrings = append(v.forbiddenCommentSubstrings, substr)
	}
}

// Validate returns everything about r that fails convention. Folder name
// checks live with the orchestrator, which knows the actual folder.
func (v *Validator) Validate(r *release.Release) []release.Violation {
	var violations []release.Violation

	for _, t := range r.Tracks {
		if t.Artist == "" {
			violations = append(violations, release.Violationf(release.KindArtists, "missing artist on %q", t.Path))
		}
	}
	if !r.IsVA() {
		albumArtists := distinct(r.Tracks, func(t release.Track) string { return t.AlbumArtist })
		if len(albumArtists) > 1 {
			violations = append(violations, release.Violationf(release.KindArtists, "inconsistent album artists %v", albumArtists))
		}
	}

	if r.Title() == "" {
		violations = append(violations, release.Violationf(release.KindTitle, "missing or inconsistent album title"))
	}
	if r.Year() == "" {
		violations = append(violations, release.Violationf(release.KindDate, "missing or inconsistent release date"))
	}

	violations = append(violations, validateTrackNumbers(r)...)

	for _, t := range r.Tracks {
		if t.Title == "" {
			violations = append(violations, release.Violationf(release.KindTrackTitles, "missing title on %q", t.Path))
		}
	}

	if len(r.Tracks) > 0 && r.Codec().IsZero() {
		violations = append(violations, release.Violationf(release.KindCodec, "release mixes codecs"))
	}

	for _, t := range r.Tracks {
		for _, substr := range v.forbiddenCommentSubstrings {
			if strings.Contains(strings.ToLower(t.Comment), strings.ToLower(substr)) {
				violations = append(violations, release.Violationf(release.KindComments, "forbidden comment on %q", t.Path))
				break
			}
		}
	}

	var anyGenre bool
	for _, t := range r.Tracks {
		if len(t.Genres) > 0 {
			anyGenre = true
			break
		}
	}
	if len(r.Tracks) > 0 && !anyGenre {
		violations = append(violations, release.Violationf(release.KindGenres, "no genres set"))
	}

	return violations
}

func validateTrackNumbers(r *release.Release) []release.Violation {
	byDisc := map[int][]int{}
	for _, t := range r.Tracks {
		byDisc[t.DiscNumber] = append(byDisc[t.DiscNumber], t.TrackNumber)
	}
	for _, nums := range byDisc {
		slices.Sort(nums)
		for i, n := range nums {
			if n != i+1 {
				return []release.Violation{release.Violationf(release.KindTrackNumbers, "track numbers not contiguous from 1")}
			}
		}
	}
	return nil
}

// Fix returns a repaired copy of r. folderNameHint is the current folder
// name, used to recover fields the tags lost. The input release is left
// untouched.
func (v *Validator) Fix(ctx context.Context, r *release.Release, folderNameHint string) (*release.Release, error) {
	fixed := release.New(slices.Clone(r.Tracks), r.Category, r.Source)
	for i := range fixed.Tracks {
		t := &fixed.Tracks[i]
		t.Artist = strings.TrimSpace(t.Artist)
		t.AlbumArtist = strings.TrimSpace(t.AlbumArtist)
		t.Album = strings.TrimSpace(t.Album)
		t.Title = strings.TrimSpace(t.Title)
		t.Comment = expungeComment(t.Comment, v.forbiddenCommentSubstrings)
	}

	fixAlbumArtist(fixed)
	fixAlbumTitle(fixed)
	fixDate(fixed)
	fixTrackNumbers(fixed)
	fillFromFolderName(fixed, folderNameHint)

	if v.Catalog != nil {
		if err := v.fixGenres(ctx, fixed); err != nil {
			// reference catalog problems never fail a fix
			slog.Warn("reference catalog lookup failed", "err", err)
		}
	}

	return fixed, nil
}

func expungeComment(comment string, forbidden []string) string {
	for _, substr := range forbidden {
		if strings.Contains(strings.ToLower(comment), strings.ToLower(substr)) {
			return ""
		}
	}
	return comment
}

func fixAlbumArtist(r *release.Release) {
	var hasAlbumArtist bool
	for _, t := range r.Tracks {
		if t.AlbumArtist != "" {
			hasAlbumArtist = true
			break
		}
	}
	if hasAlbumArtist {
		return
	}
	artists := distinct(r.Tracks, func(t release.Track) string { return t.Artist })
	if len(artists) != 1 {
		return
	}
	for i := range r.Tracks {
		r.Tracks[i].AlbumArtist = artists[0]
	}
}

func fixAlbumTitle(r *release.Release) {
	if r.Title() != "" {
		return
	}
	counts := map[string]int{}
	for _, t := range r.Tracks {
		if t.Album != "" {
			counts[t.Album]++
		}
	}
	var best string
	for album, n := range counts {
		if n > len(r.Tracks)/2 && (best == "" || n > counts[best]) {
			best = album
		}
	}
	if best == "" {
		return
	}
	for i := range r.Tracks {
		r.Tracks[i].Album = best
	}
}

var fullYearExpr = regexp.MustCompile(`\b(\d{4})\b`)

func fixDate(r *release.Release) {
	if r.Year() != "" {
		return
	}
	years := map[string]struct{}{}
	for _, t := range r.Tracks {
		if m := fullYearExpr.FindString(t.Date); m != "" {
			years[m] = struct{}{}
		}
	}
	if len(years) != 1 {
		return
	}
	var year string
	for y := range years {
		year = y
	}
	for i := range r.Tracks {
		r.Tracks[i].Date = year
	}
}

var leadingNumExpr = regexp.MustCompile(`^(\d{1,3})\b`)

func fixTrackNumbers(r *release.Release) {
	for _, t := range r.Tracks {
		if t.TrackNumber != 0 {
			return
		}
	}
	nums := make([]int, len(r.Tracks))
	seen := map[int]struct{}{}
	for i, t := range r.Tracks {
		m := leadingNumExpr.FindString(filepath.Base(t.Path))
		if m == "" {
			return
		}
		var n int
		fmt.Sscanf(m, "%d", &n)
		if n == 0 {
			return
		}
		if _, dup := seen[n]; dup {
			return
		}
		seen[n] = struct{}{}
		nums[i] = n
	}
	for i := range r.Tracks {
		r.Tracks[i].TrackNumber = nums[i]
	}
}

// folderHintExpr recovers "Artist - Title (Year)" from a conventional
// folder name, trailing tags and all.
var folderHintExpr = regexp.MustCompile(`^(.+?) - (.+?) \((\d{4})\)`)

func fillFromFolderName(r *release.Release, hint string) {
	m := folderHintExpr.FindStringSubmatch(hint)
	if m == nil {
		return
	}
	artist, title, year := m[1], m[2], m[3]

	if r.Title() == "" {
		for i := range r.Tracks {
			r.Tracks[i].Album = title
		}
	}
	if r.Year() == "" {
		for i := range r.Tracks {
			r.Tracks[i].Date = year
		}
	}
	if len(r.Artists()) == 0 && !strings.EqualFold(artist, "VA") {
		for i := range r.Tracks {
			r.Tracks[i].AlbumArtist = artist
			if r.Tracks[i].Artist == "" {
				r.Tracks[i].Artist = artist
			}
		}
	}
}

const maxGenres = 3

func (v *Validator) fixGenres(ctx context.Context, r *release.Release) error {
	for _, t := range r.Tracks {
		if len(t.Genres) > 0 {
			return nil
		}
	}
	if r.IsVA() || len(r.Artists()) == 0 || r.Title() == "" {
		return nil
	}

	album, err := v.Catalog.AlbumInfo(ctx, r.Artists()[0], r.Title())
	if err != nil {
		return fmt.Errorf("album info: %w", err)
	}

	genres := album.TopTags
	if len(genres) > maxGenres {
		genres = genres[:maxGenres]
	}
	for i := range r.Tracks {
		r.Tracks[i].Genres = slices.Clone(genres)
	}
	return nil
}

func distinct(tracks []release.Track, fn func(release.Track) string) []string {
	var vals []string
	for _, t := range tracks {
		if v := fn(t); v != "" {
			vals = append(vals, v)
		}
	}
	slices.Sort(vals)
	return slices.Compact(vals)
}
