package release

import (
	"fmt"
	"strings"
)

// Kind classifies one respect in which a release or its folder fails
// convention.
type Kind string

const (
	KindArtists      Kind = "artists"
	KindTitle        Kind = "title"
	KindDate         Kind = "date"
	KindTrackNumbers Kind = "track-numbers"
	KindTrackTitles  Kind = "track-titles"
	KindCodec        Kind = "codec"
	KindComments     Kind = "comments"
	KindGenres       Kind = "genres"
	KindFolderName   Kind = "folder-name"
	KindUnreadable   Kind = "unreadable"
)

func Kinds() []Kind {
	return []Kind{
		KindArtists, KindTitle, KindDate, KindTrackNumbers, KindTrackTitles,
		KindCodec, KindComments, KindGenres, KindFolderName, KindUnreadable,
	}
}

func (k Kind) IsValid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

func KindsString() string {
	parts := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		parts = append(parts, string(k))
	}
	return strings.Join(parts, ", ")
}

// Violation is immutable once created.
type Violation struct {
	Kind    Kind
	Message string
}

func Violationf(kind Kind, format string, a ...any) Violation {
	return Violation{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// HasKind reports whether any violation in vs has the given kind.
func HasKind(vs []Violation, kind Kind) bool {
	for _, v := range vs {
		if v.Kind == kind {
			return true
		}
	}
	return false
}
