package release_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.senan.xyz/centrifuge/release"
)

func TestGuessCategory(t *testing.T) {
	t.Parallel()

	assert.Equal(t, release.CategoryAlbum, release.GuessCategory(filepath.Join("path", "to", "Banging Tunes")))
	assert.Equal(t, release.CategoryMix, release.GuessCategory(filepath.Join("path", "to", "Banging Tunes [Mix]")))
	assert.Equal(t, release.CategoryCompilation, release.GuessCategory(filepath.Join("path", "to", "Compilation", "Banging Tunes")))
	assert.Equal(t, release.CategoryEP, release.GuessCategory(filepath.Join("path", "to", "Banging Tunes ep")))
	assert.Equal(t, release.CategorySingle, release.GuessCategory(filepath.Join("x", "Artist - Tune (Single) (2001)")))
	assert.Equal(t, release.CategorySoundtrack, release.GuessCategory(filepath.Join("x", "Film Music - Soundtrack - 2001")))
}

func TestGuessCategoryAncestorsOnly(t *testing.T) {
	t.Parallel()

	// the ancestor match only reaches three levels up
	assert.Equal(t, release.CategoryAlbum,
		release.GuessCategory(filepath.Join("Mix", "a", "b", "c", "Banging Tunes")))
	assert.Equal(t, release.CategoryMix,
		release.GuessCategory(filepath.Join("a", "Mix", "b", "Banging Tunes")))
}

func TestGuessSource(t *testing.T) {
	t.Parallel()

	assert.Equal(t, release.SourceCD, release.GuessSource(filepath.Join("path", "to", "Banging Tunes")))
	assert.Equal(t, release.SourceVinyl, release.GuessSource(filepath.Join("path", "to", "Banging Tunes [Vinyl]")))
	assert.Equal(t, release.SourceWeb, release.GuessSource(filepath.Join("path", "Web", "Banging Tunes")))
	assert.Equal(t, release.SourceVinyl, release.GuessSource(filepath.Join("path", "to", "Banging Tunes vinyl")))
	assert.Equal(t, release.SourceSACD, release.GuessSource(filepath.Join("path", "to", "Banging Tunes (SACD) (1999)")))
}

func TestSourceFromMedia(t *testing.T) {
	t.Parallel()

	s, ok := release.SourceFromMedia("WEB")
	assert.True(t, ok)
	assert.Equal(t, release.SourceWeb, s)

	s, ok = release.SourceFromMedia("vinyl")
	assert.True(t, ok)
	assert.Equal(t, release.SourceVinyl, s)

	_, ok = release.SourceFromMedia("telepathy")
	assert.False(t, ok)
}
