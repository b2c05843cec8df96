// Package release holds the in-memory representation of one release's worth
// of audio tracks, and everything derived from it. A release's canonical
// folder name, its dedup fingerprint, and its inferred category and source
// all come from here.
package release

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rainycape/unidecode"
	"golang.org/x/text/unicode/norm"

	"go.senan.xyz/centrifuge/fileutil"
	"go.senan.xyz/centrifuge/tags"
)

// Track is one audio file's metadata. Path is the filename relative to the
// release directory. Tracks are built explicitly from tag files, the tag
// layer never leaks through.
type Track struct {
	Path        string
	Artist      string
	Artists     []string
	AlbumArtist string
	Album       string
	Title       string
	Date        string
	TrackNumber int
	DiscNumber  int
	Genres      []string
	Comment     string
	Codec       tags.Codec
	Length      time.Duration
}

// TrackFromFile builds a Track from an open tag file. The file stays owned
// by the caller.
func TrackFromFile(relPath string, f *tags.File) Track {
	var t Track
	t.Path = relPath
	t.Artist = f.Read(tags.Artist)
	t.Artists = slices.Clone(f.ReadMulti(tags.Artists))
	t.AlbumArtist = f.Read(tags.AlbumArtist)
	t.Album = f.Read(tags.Album)
	t.Title = f.Read(tags.Title)
	t.Date = f.Read(tags.Date)
	t.TrackNumber = f.ReadNum(tags.TrackNumber)
	t.DiscNumber = f.ReadNum(tags.DiscNumber)
	t.Genres = slices.Clone(f.ReadMulti(tags.Genres))
	if len(t.Genres) == 0 {
		t.Genres = slices.Clone(f.ReadMulti(tags.Genre))
	}
	t.Comment = f.Read(tags.Comment)
	t.Codec = tags.DetectCodec(relPath, f.Bitrate())
	t.Length = f.Length()
	return t
}

// Release is one album/EP/single treated as a unit. It is owned by a single
// orchestration iteration.
type Release struct {
	Tracks   []Track
	Category Category
	Source   Source

	// NumViolations is set after validation and gates moving.
	NumViolations int
}

func New(tracks []Track, category Category, source Source) *Release {
	return &Release{Tracks: tracks, Category: category, Source: source}
}

// Artists returns the distinct release-level artists in track order,
// preferring album artist tags over track artists.
func (r *Release) Artists() []string {
	var artists []string
	for _, t := range r.Tracks {
		if t.AlbumArtist != "" {
			artists = append(artists, t.AlbumArtist)
		}
	}
	if len(artists) == 0 {
		for _, t := range r.Tracks {
			if t.Artist != "" {
				artists = append(artists, t.Artist)
			}
		}
	}
	slices.Sort(artists)
	return slices.Compact(artists)
}

// IsVA reports whether this looks like a various-artists release.
func (r *Release) IsVA() bool {
	for _, t := range r.Tracks {
		switch strings.ToLower(t.AlbumArtist) {
		case "various artists", "various", "va":
			return true
		}
	}
	var albumArtist bool
	for _, t := range r.Tracks {
		if t.AlbumArtist != "" {
			albumArtist = true
			break
		}
	}
	return !albumArtist && len(r.Artists()) > 1
}

// Title returns the album title shared by all tracks, or "" when the tracks
// disagree.
func (r *Release) Title() string {
	return consistent(r.Tracks, func(t Track) string { return t.Album })
}

// Year returns the four digit release year, or "" when absent or
// inconsistent.
func (r *Release) Year() string {
	date := consistent(r.Tracks, func(t Track) string { return t.Date })
	if len(date) < 4 {
		return ""
	}
	year := date[:4]
	for _, c := range year {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return year
}

// Codec returns the codec shared by all tracks, or the zero Codec when the
// release mixes codecs.
func (r *Release) Codec() tags.Codec {
	var codec tags.Codec
	for _, t := range r.Tracks {
		if codec.IsZero() {
			codec = t.Codec
			continue
		}
		if t.Codec.Short != codec.Short {
			return tags.Codec{}
		}
	}
	return codec
}

// ArtistCredit is the joined artist list used in folder names, "VA" for
// various-artists releases.
func (r *Release) ArtistCredit() string {
	if r.IsVA() {
		return "VA"
	}
	return strings.Join(r.Artists(), ", ")
}

// CanValidateFolderName reports whether enough metadata exists to compute a
// canonical folder name at all.
func (r *Release) CanValidateFolderName() bool {
	if len(r.Tracks) == 0 {
		return false
	}
	return r.ArtistCredit() != "" && r.Title() != "" && r.Year() != "" && !r.Codec().IsZero()
}

// FolderName computes the canonical folder name. When releases are not
// grouped into category folders, a non-Album category is tagged in the name
// instead, which is also what category inference reads back.
func (r *Release) FolderName(codecShort, groupByCategory bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s (%s)", fileutil.SafePath(r.ArtistCredit()), fileutil.SafePath(r.Title()), r.Year())
	if !groupByCategory && r.Category != CategoryAlbum {
		fmt.Fprintf(&b, " [%s]", r.Category)
	}
	fmt.Fprintf(&b, " [%s]", r.Codec().Name(!codecShort))
	return b.String()
}

// TrackFilename computes the canonical filename for t, or "" when the track
// is missing a number or title.
func (r *Release) TrackFilename(t Track) string {
	if t.TrackNumber == 0 || t.Title == "" {
		return ""
	}
	ext := strings.ToLower(ext(t.Path))
	var name string
	if r.IsVA() {
		if t.Artist == "" {
			return ""
		}
		name = fmt.Sprintf("%02d %s - %s", t.TrackNumber, t.Artist, t.Title)
	} else {
		name = fmt.Sprintf("%02d %s", t.TrackNumber, t.Title)
	}
	return fileutil.SafePath(name) + ext
}

// FlattenArtists renders an artist list as a single artist folder
// component.
func FlattenArtists(artists []string) string {
	return fileutil.SafePath(strings.Join(artists, ", "))
}

// Fingerprint identifies releases that are musically the same regardless of
// minor metadata differences. Equality is the four-tuple; ordering among
// equals is by codec rank only.
type Fingerprint struct {
	Artists string
	Year    string
	Title   string
	Codec   string
}

func (r *Release) Fingerprint() Fingerprint {
	artists := make([]string, 0, len(r.Artists()))
	for _, a := range r.Artists() {
		artists = append(artists, normalize(a))
	}
	return Fingerprint{
		Artists: strings.Join(artists, "\x00"),
		Year:    r.Year(),
		Title:   normalize(r.Title()),
		Codec:   r.Codec().Family(),
	}
}

// Rank is the quality score used to break fingerprint ties.
func (r *Release) Rank() int {
	return r.Codec().Rank
}

func normalize(s string) string {
	s = norm.NFC.String(s)
	s = unidecode.Unidecode(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

func consistent(tracks []Track, fn func(Track) string) string {
	var v string
	for _, t := range tracks {
		cur := fn(t)
		if cur == "" {
			continue
		}
		if v == "" {
			v = cur
			continue
		}
		if cur != v {
			return ""
		}
	}
	return v
}

func ext(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i:]
	}
	return ""
}
