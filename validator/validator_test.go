package validator_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.senan.xyz/centrifuge/lastfm"
	"go.senan.xyz/centrifuge/release"
	"go.senan.xyz/centrifuge/tags"
	"go.senan.xyz/centrifuge/validator"
)

func flac() tags.Codec { return tags.DetectCodec("x.flac", 0) }

func goodRelease() *release.Release {
	return release.New([]release.Track{
		{Path: "01 One.flac", Artist: "Artist", AlbumArtist: "Artist", Album: "Album", Title: "One", Date: "1999", TrackNumber: 1, Genres: []string{"idm"}, Codec: flac()},
		{Path: "02 Two.flac", Artist: "Artist", AlbumArtist: "Artist", Album: "Album", Title: "Two", Date: "1999", TrackNumber: 2, Genres: []string{"idm"}, Codec: flac()},
	}, release.CategoryAlbum, release.SourceCD)
}

func TestValidateClean(t *testing.T) {
	t.Parallel()

	var v validator.Validator
	assert.Empty(t, v.Validate(goodRelease()))
}

func TestValidateViolations(t *testing.T) {
	t.Parallel()

	var v validator.Validator

	r := goodRelease()
	r.Tracks[0].Artist = ""
	r.Tracks[0].Date = "2001"
	r.Tracks[1].Title = ""
	r.Tracks[1].TrackNumber = 5

	vs := v.Validate(r)
	assert.True(t, release.HasKind(vs, release.KindArtists))
	assert.True(t, release.HasKind(vs, release.KindDate))
	assert.True(t, release.HasKind(vs, release.KindTrackTitles))
	assert.True(t, release.HasKind(vs, release.KindTrackNumbers))
	assert.False(t, release.HasKind(vs, release.KindTitle))
}

func TestValidateMixedCodecs(t *testing.T) {
	t.Parallel()

	var v validator.Validator

	r := goodRelease()
	r.Tracks[1].Codec = tags.DetectCodec("x.mp3", 245)

	vs := v.Validate(r)
	assert.True(t, release.HasKind(vs, release.KindCodec))
}

func TestValidateForbiddenComment(t *testing.T) {
	t.Parallel()

	var v validator.Validator
	v.AddForbiddenCommentSubstring("ripped by")

	r := goodRelease()
	r.Tracks[0].Comment = "Ripped by SCENE2001"

	vs := v.Validate(r)
	assert.True(t, release.HasKind(vs, release.KindComments))
}

func TestFixExpungesComments(t *testing.T) {
	t.Parallel()

	var v validator.Validator
	v.AddForbiddenCommentSubstring("ripped by")

	r := goodRelease()
	r.Tracks[0].Comment = "Ripped by SCENE2001"
	r.Tracks[1].Comment = "keep me"

	fixed, err := v.Fix(context.Background(), r, "")
	require.NoError(t, err)
	assert.Equal(t, "", fixed.Tracks[0].Comment)
	assert.Equal(t, "keep me", fixed.Tracks[1].Comment)
	// input untouched
	assert.Equal(t, "Ripped by SCENE2001", r.Tracks[0].Comment)
}

func TestFixAlbumArtist(t *testing.T) {
	t.Parallel()

	var v validator.Validator

	r := goodRelease()
	r.Tracks[0].AlbumArtist = ""
	r.Tracks[1].AlbumArtist = ""

	fixed, err := v.Fix(context.Background(), r, "")
	require.NoError(t, err)
	assert.Equal(t, "Artist", fixed.Tracks[0].AlbumArtist)
	assert.Equal(t, "Artist", fixed.Tracks[1].AlbumArtist)
}

func TestFixDateFromMessyTags(t *testing.T) {
	t.Parallel()

	var v validator.Validator

	r := goodRelease()
	r.Tracks[0].Date = "released 1999 remaster"
	r.Tracks[1].Date = "1999-05-01"

	fixed, err := v.Fix(context.Background(), r, "")
	require.NoError(t, err)
	assert.Equal(t, "1999", fixed.Year())
}

func TestFixTrackNumbersFromFilenames(t *testing.T) {
	t.Parallel()

	var v validator.Validator

	r := goodRelease()
	r.Tracks[0].TrackNumber = 0
	r.Tracks[1].TrackNumber = 0

	fixed, err := v.Fix(context.Background(), r, "")
	require.NoError(t, err)
	assert.Equal(t, 1, fixed.Tracks[0].TrackNumber)
	assert.Equal(t, 2, fixed.Tracks[1].TrackNumber)
}

func TestFixFromFolderNameHint(t *testing.T) {
	t.Parallel()

	var v validator.Validator

	r := goodRelease()
	for i := range r.Tracks {
		r.Tracks[i].Album = ""
		r.Tracks[i].Date = ""
	}

	fixed, err := v.Fix(context.Background(), r, "Artist - Album (1999) [FLAC]")
	require.NoError(t, err)
	assert.Equal(t, "Album", fixed.Title())
	assert.Equal(t, "1999", fixed.Year())
}

func TestFixGenresFromCatalog(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<h1 class="header-new-title">Album</h1>
			<ul class="tags-list">
				<li class="tag"><a>idm</a></li>
				<li class="tag"><a>ambient</a></li>
				<li class="tag"><a>electronic</a></li>
				<li class="tag"><a>seen live</a></li>
			</ul>
		</body></html>`))
	}))
	defer server.Close()

	v := validator.Validator{Catalog: &lastfm.Client{BaseURL: server.URL}}

	r := goodRelease()
	r.Tracks[0].Genres = nil
	r.Tracks[1].Genres = nil

	fixed, err := v.Fix(context.Background(), r, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"idm", "ambient", "electronic"}, fixed.Tracks[0].Genres)
}
