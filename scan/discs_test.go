package scan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.senan.xyz/centrifuge/scan"
)

func TestAssembleDiscsValidateOnly(t *testing.T) {
	t.Parallel()

	parent := filepath.Join("music", "incoming")
	dirs := []string{
		filepath.Join(parent, "Artist - Album Disc 1"),
		filepath.Join(parent, "Artist - Album Disc 2"),
		filepath.Join(parent, "Artist - Other Album"),
	}

	out, err := scan.AssembleDiscs(dirs, false)
	require.NoError(t, err)
	// disc entries dropped from the working set, nothing touched on disk
	assert.Equal(t, []string{filepath.Join(parent, "Artist - Other Album")}, out)
}

func TestAssembleDiscsLoneDiscNotGrouped(t *testing.T) {
	t.Parallel()

	dirs := []string{filepath.Join("m", "Artist - Album Disc 1")}

	out, err := scan.AssembleDiscs(dirs, false)
	require.NoError(t, err)
	assert.Equal(t, dirs, out)
}

func TestAssembleDiscsEmbeddedWordRejected(t *testing.T) {
	t.Parallel()

	dirs := []string{
		filepath.Join("m", "Abacadisc2"),
		filepath.Join("m", "Abacadisc1"),
	}

	out, err := scan.AssembleDiscs(dirs, false)
	require.NoError(t, err)
	assert.Equal(t, dirs, out)
}

func TestAssembleDiscsApply(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "Artist - Album Disc 1", "01.mp3"))
	touch(t, filepath.Join(root, "Artist - Album Disc 2", "01.mp3"))

	dirs := []string{
		filepath.Join(root, "Artist - Album Disc 1"),
		filepath.Join(root, "Artist - Album Disc 2"),
	}

	out, err := scan.AssembleDiscs(dirs, true)
	require.NoError(t, err)

	container := filepath.Join(root, "Artist - Album")
	assert.Equal(t, []string{container}, out)
	assert.FileExists(t, filepath.Join(container, "Artist - Album Disc 1", "01.mp3"))
	assert.FileExists(t, filepath.Join(container, "Artist - Album Disc 2", "01.mp3"))
}

func TestAssembleDiscsStripsTrailingTag(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "Artist - Album Disc 1 [FLAC]", "01.flac"))
	touch(t, filepath.Join(root, "Artist - Album Disc 2 [FLAC]", "01.flac"))

	dirs := []string{
		filepath.Join(root, "Artist - Album Disc 1 [FLAC]"),
		filepath.Join(root, "Artist - Album Disc 2 [FLAC]"),
	}

	out, err := scan.AssembleDiscs(dirs, true)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "Artist - Album")}, out)
}

func TestAssembleDiscsCaseInsensitiveGrouping(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "Artist - Album disc 1", "01.mp3"))
	touch(t, filepath.Join(root, "ARTIST - ALBUM Disc 2", "01.mp3"))

	dirs := []string{
		filepath.Join(root, "Artist - Album disc 1"),
		filepath.Join(root, "ARTIST - ALBUM Disc 2"),
	}

	out, err := scan.AssembleDiscs(dirs, true)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.DirExists(t, out[0])
}

func TestAssembleDiscsBracketedMarkers(t *testing.T) {
	t.Parallel()

	dirs := []string{
		filepath.Join("m", "Big Box (CD1)"),
		filepath.Join("m", "Big Box (CD2)"),
		filepath.Join("m", "Unrelated"),
	}

	out, err := scan.AssembleDiscs(dirs, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("m", "Unrelated")}, out)
}
