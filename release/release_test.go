package release_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.senan.xyz/centrifuge/release"
	"go.senan.xyz/centrifuge/tags"
)

func flac() tags.Codec { return tags.DetectCodec("x.flac", 0) }
func v0() tags.Codec   { return tags.DetectCodec("x.mp3", 245) }

func testRelease() *release.Release {
	return release.New([]release.Track{
		{Path: "01 One.flac", Artist: "Aphex Twin", AlbumArtist: "Aphex Twin", Album: "Drukqs", Title: "One", Date: "2001-10-22", TrackNumber: 1, Codec: flac()},
		{Path: "02 Two.flac", Artist: "Aphex Twin", AlbumArtist: "Aphex Twin", Album: "Drukqs", Title: "Two", Date: "2001-10-22", TrackNumber: 2, Codec: flac()},
	}, release.CategoryAlbum, release.SourceCD)
}

func TestFolderName(t *testing.T) {
	t.Parallel()

	r := testRelease()
	assert.Equal(t, "Aphex Twin - Drukqs (2001) [FLAC]", r.FolderName(true, false))

	r.Category = release.CategoryEP
	assert.Equal(t, "Aphex Twin - Drukqs (2001) [EP] [FLAC]", r.FolderName(true, false))
	// grouped runs carry the category in the parent folder instead
	assert.Equal(t, "Aphex Twin - Drukqs (2001) [FLAC]", r.FolderName(true, true))
}

func TestFolderNameFullCodec(t *testing.T) {
	t.Parallel()

	r := testRelease()
	for i := range r.Tracks {
		r.Tracks[i].Codec = v0()
	}
	assert.Equal(t, "Aphex Twin - Drukqs (2001) [V0]", r.FolderName(true, false))
	assert.Equal(t, "Aphex Twin - Drukqs (2001) [MP3 V0]", r.FolderName(false, false))
}

func TestCanValidateFolderName(t *testing.T) {
	t.Parallel()

	r := testRelease()
	assert.True(t, r.CanValidateFolderName())

	for i := range r.Tracks {
		r.Tracks[i].Date = ""
	}
	assert.False(t, r.CanValidateFolderName())
}

func TestYear(t *testing.T) {
	t.Parallel()

	r := testRelease()
	assert.Equal(t, "2001", r.Year())

	r.Tracks[0].Date = "2002"
	assert.Equal(t, "", r.Year()) // inconsistent

	r.Tracks[0].Date = "20xx"
	r.Tracks[1].Date = "20xx"
	assert.Equal(t, "", r.Year())
}

func TestCodecMixed(t *testing.T) {
	t.Parallel()

	r := testRelease()
	assert.Equal(t, "FLAC", r.Codec().Short)

	r.Tracks[1].Codec = v0()
	assert.True(t, r.Codec().IsZero())
}

func TestIsVA(t *testing.T) {
	t.Parallel()

	r := testRelease()
	assert.False(t, r.IsVA())

	for i := range r.Tracks {
		r.Tracks[i].AlbumArtist = "Various Artists"
	}
	assert.True(t, r.IsVA())
	assert.Equal(t, "VA", r.ArtistCredit())

	// no album artist, several track artists
	va := release.New([]release.Track{
		{Artist: "A", Album: "Comp", Title: "One", Date: "1999", TrackNumber: 1, Codec: flac()},
		{Artist: "B", Album: "Comp", Title: "Two", Date: "1999", TrackNumber: 2, Codec: flac()},
	}, release.CategoryCompilation, release.SourceCD)
	assert.True(t, va.IsVA())
}

func TestTrackFilename(t *testing.T) {
	t.Parallel()

	r := testRelease()
	assert.Equal(t, "01 One.flac", r.TrackFilename(r.Tracks[0]))

	missing := r.Tracks[0]
	missing.Title = ""
	assert.Equal(t, "", r.TrackFilename(missing))

	va := release.New([]release.Track{
		{Path: "x.mp3", Artist: "A", Album: "Comp", Title: "One", TrackNumber: 1, Codec: v0()},
		{Path: "y.mp3", Artist: "B", Album: "Comp", Title: "Two", TrackNumber: 2, Codec: v0()},
	}, release.CategoryCompilation, release.SourceCD)
	assert.Equal(t, "01 A - One.mp3", va.TrackFilename(va.Tracks[0]))
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a, b := testRelease(), testRelease()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	// case and diacritics don't split fingerprints
	b.Tracks[0].Album = "DRUKQS"
	b.Tracks[1].Album = "DRUKQS"
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Tracks[0].AlbumArtist = "Áphex Twín"
	b.Tracks[1].AlbumArtist = "Áphex Twín"
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	// a codec change does
	for i := range b.Tracks {
		b.Tracks[i].Codec = v0()
	}
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Greater(t, a.Rank(), b.Rank())

	// but tiers of the same codec collide, rank decides between them
	c := testRelease()
	for i := range c.Tracks {
		c.Tracks[i].Codec = tags.DetectCodec("x.mp3", 320)
	}
	assert.Equal(t, b.Fingerprint(), c.Fingerprint())
	assert.Greater(t, c.Rank(), b.Rank())
}

func TestViolationKinds(t *testing.T) {
	t.Parallel()

	assert.True(t, release.KindFolderName.IsValid())
	assert.False(t, release.Kind("nonsense").IsValid())

	vs := []release.Violation{release.Violationf(release.KindDate, "missing date")}
	assert.True(t, release.HasKind(vs, release.KindDate))
	assert.False(t, release.HasKind(vs, release.KindCodec))
	assert.Equal(t, "date: missing date", vs[0].String())
}
