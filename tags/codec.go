package tags

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Codec describes the encoding of a track. Short is the form used in folder
// names ("FLAC", "V0", "320"), Full always carries the container ("MP3 V0").
// Rank is a monotonic quality score, lossless over lossy, used to pick a
// winner among duplicate releases.
type Codec struct {
	Short string
	Full  string
	Rank  int
}

func (c Codec) Name(full bool) string {
	if full {
		return c.Full
	}
	return c.Short
}

func (c Codec) IsZero() bool { return c.Short == "" }

// Family is the codec name without any quality tier, so that different MP3
// encodes of the same release compare equal and rank decides between them.
func (c Codec) Family() string {
	family, _, _ := strings.Cut(c.Full, " ")
	return family
}

// DetectCodec classifies a track by extension, falling back to the bitrate
// to split MP3 into the usual CBR/VBR tiers.
func DetectCodec(path string, bitrate int) Codec {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".flac":
		return Codec{"FLAC", "FLAC", 40}
	case ".wav":
		return Codec{"WAV", "WAV", 38}
	case ".wv":
		return Codec{"WV", "WavPack", 37}
	case ".opus":
		return Codec{"OPUS", "Opus", 16}
	case ".m4a", ".m4b", ".aac":
		return Codec{"AAC", "AAC", 15}
	case ".ogg":
		return Codec{"OGG", "Ogg Vorbis", 14}
	case ".wma":
		return Codec{"WMA", "WMA", 8}
	case ".mp3":
		switch {
		case bitrate >= 315:
			return Codec{"320", "MP3 320", 30}
		case bitrate >= 230:
			return Codec{"V0", "MP3 V0", 28}
		case bitrate >= 180:
			return Codec{"V2", "MP3 V2", 24}
		default:
			br := strconv.Itoa(bitrate)
			return Codec{br, "MP3 " + br, 10}
		}
	}
	return Codec{}
}
