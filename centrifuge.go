// Package centrifuge sorts messy music folders into a tidy library. A scan
// finds release directories, each release is loaded, checked against the
// tagging convention, optionally repaired, and finally moved into place with
// duplicates resolved by codec quality.
package centrifuge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.senan.xyz/natcmp"

	"go.senan.xyz/centrifuge/fileutil"
	"go.senan.xyz/centrifuge/hook"
	"go.senan.xyz/centrifuge/originfile"
	"go.senan.xyz/centrifuge/release"
	"go.senan.xyz/centrifuge/scan"
	"go.senan.xyz/centrifuge/tags"
	"go.senan.xyz/centrifuge/validator"
)

// Config holds everything one run needs. Validator is required, everything
// else is optional; with no destinations set nothing is moved.
type Config struct {
	Validator *validator.Validator

	// DestDir, when set, is where clean releases are moved to.
	DestDir string
	// InvalidDestDir, when set, is where releases that still have
	// violations after fixing are moved to.
	InvalidDestDir string
	// InvalidKind restricts InvalidDestDir moves to releases with at least
	// one violation of this kind. Empty means any violation qualifies.
	InvalidKind release.Kind
	// DuplicateDir, when set, enables duplicate resolution. Losers of a
	// fingerprint collision end up here.
	DuplicateDir string

	GroupByArtist   bool
	GroupByCategory bool
	FullCodecNames  bool
	DryRun          bool

	// PostFixHook runs once per clean release after it reached its final
	// directory.
	PostFixHook hook.Hook
}

// Result describes what happened to one release.
type Result struct {
	Dir      string // where the release was found
	FinalDir string // where it ended up
	Release  *release.Release
	Before   []release.Violation // violations as found
	After    []release.Violation // violations remaining after fixing
}

// ListReleases returns the release directories under root.
func ListReleases(root string) ([]string, error) {
	return scan.ReleaseDirs(root)
}

// ValidateReleases checks every release under root and reports each result.
// Nothing on disk is touched. Per release errors are logged, not returned.
func ValidateReleases(ctx context.Context, cfg *Config, root string, report func(Result)) error {
	dirs, err := scan.ReleaseDirs(root)
	if err != nil {
		return fmt.Errorf("scan %q: %w", root, err)
	}
	dirs, err = scan.AssembleDiscs(dirs, false)
	if err != nil {
		return fmt.Errorf("assemble discs: %w", err)
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := validateRelease(cfg, dir)
		if err != nil {
			slog.ErrorContext(ctx, "validate release", "dir", dir, "err", err)
			continue
		}
		report(res)
	}
	return nil
}

func validateRelease(cfg *Config, dir string) (Result, error) {
	rel, unreadable, err := loadRelease(dir)
	if err != nil {
		return Result{}, err
	}

	violations := cfg.Validator.Validate(rel)
	violations = append(violations, unreadableViolations(unreadable)...)
	violations = append(violations, folderNameViolations(cfg, rel, filepath.Base(dir), false)...)
	rel.NumViolations = len(violations)

	return Result{Dir: dir, FinalDir: dir, Release: rel, Before: violations, After: violations}, nil
}

// FixReleases repairs, renames, and moves every release under root,
// reporting each result. Multi disc releases are consolidated before
// anything else. Per release errors are logged, not returned.
func FixReleases(ctx context.Context, cfg *Config, root string, report func(Result)) error {
	dirs, err := scan.ReleaseDirs(root)
	if err != nil {
		return fmt.Errorf("scan %q: %w", root, err)
	}
	dirs, err = scan.AssembleDiscs(dirs, !cfg.DryRun)
	if err != nil {
		return fmt.Errorf("assemble discs: %w", err)
	}

	dedup := NewDedup()
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := fixRelease(ctx, cfg, dedup, root, dir)
		if err != nil {
			slog.ErrorContext(ctx, "fix release", "dir", dir, "err", err)
			continue
		}
		report(res)
	}
	return nil
}

var errReleaseInUse = errors.New("release is in use")

func fixRelease(ctx context.Context, cfg *Config, dedup *Dedup, root, dir string) (Result, error) {
	switch ok, err := fileutil.CanLock(dir); {
	case err != nil:
		return Result{}, fmt.Errorf("check locks: %w", err)
	case !ok:
		return Result{}, errReleaseInUse
	}

	rel, unreadable, err := loadRelease(dir)
	if err != nil {
		return Result{}, err
	}

	before := cfg.Validator.Validate(rel)
	before = append(before, unreadableViolations(unreadable)...)
	before = append(before, folderNameViolations(cfg, rel, filepath.Base(dir), false)...)

	fixed, err := cfg.Validator.Fix(ctx, rel, filepath.Base(dir))
	if err != nil {
		return Result{}, fmt.Errorf("fix: %w", err)
	}

	if !cfg.DryRun {
		if err := writeTagChanges(dir, fixed); err != nil {
			return Result{}, err
		}
	}
	if err := renameTracks(ctx, cfg, fixed, dir); err != nil {
		return Result{}, err
	}

	// the folder itself gets renamed below, so only "cannot name at all"
	// counts against the fixed release
	after := cfg.Validator.Validate(fixed)
	after = append(after, unreadableViolations(unreadable)...)
	after = append(after, folderNameViolations(cfg, fixed, filepath.Base(dir), true)...)
	fixed.NumViolations = len(after)

	var finalDir string
	if len(after) == 0 {
		finalDir, err = moveRelease(ctx, cfg, dedup, root, fixed, dir)
	} else {
		finalDir, err = moveInvalid(ctx, cfg, dir, after)
	}
	if err != nil {
		return Result{}, err
	}

	if !cfg.DryRun {
		if err := fileutil.EnforceMaxPath(finalDir); err != nil {
			slog.ErrorContext(ctx, "enforce max path", "dir", finalDir, "err", err)
		}
	}

	if len(after) == 0 && !cfg.DryRun && !cfg.PostFixHook.IsZero() {
		if err := cfg.PostFixHook.Run(ctx, finalDir); err != nil {
			slog.ErrorContext(ctx, "run post fix hook", "dir", finalDir, "err", err)
		}
	}

	return Result{Dir: dir, FinalDir: finalDir, Release: fixed, Before: before, After: after}, nil
}

// loadRelease reads every audio file under dir into a release, tracks in
// natural filename order. Files whose tags can't be read are returned
// separately rather than failing the load.
func loadRelease(dir string) (*release.Release, []string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !tags.CanRead(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %q: %w", dir, err)
	}
	slices.SortFunc(paths, natcmp.Compare)

	var tracks []release.Track
	var unreadable []string
	for _, p := range paths {
		f, err := tags.Read(filepath.Join(dir, p))
		if err != nil {
			slog.Warn("read tags", "path", p, "err", err)
			unreadable = append(unreadable, p)
			continue
		}
		tracks = append(tracks, release.TrackFromFile(p, f))
		f.Close()
	}

	category := release.GuessCategory(dir)
	source := release.GuessSource(dir)
	if origin, err := originfile.Find(dir); err != nil {
		slog.Warn("parse origin file", "dir", dir, "err", err)
	} else if origin != nil && origin.Media != "" {
		if s, ok := release.SourceFromMedia(origin.Media); ok {
			source = s
		}
	}

	return release.New(tracks, category, source), unreadable, nil
}

// writeTagChanges writes each track's metadata back to its file. Files whose
// tags already match are left untouched.
func writeTagChanges(dir string, r *release.Release) error {
	for _, t := range r.Tracks {
		err := tags.Write(filepath.Join(dir, t.Path), func(f *tags.File) error {
			f.Write(tags.Artist, t.Artist)
			if len(t.Artists) > 0 {
				f.Write(tags.Artists, t.Artists...)
			}
			f.Write(tags.AlbumArtist, t.AlbumArtist)
			f.Write(tags.Album, t.Album)
			f.Write(tags.Title, t.Title)
			f.Write(tags.Date, t.Date)
			f.WriteNum(tags.TrackNumber, t.TrackNumber)
			f.WriteNum(tags.DiscNumber, t.DiscNumber)
			f.Write(tags.Genres, t.Genres...)
			f.Write(tags.Comment, t.Comment)
			return nil
		})
		if err != nil {
			return fmt.Errorf("write tags %q: %w", t.Path, err)
		}
	}
	return nil
}

// renameTracks renames every track to its canonical filename. If any track
// has too little metadata to name, no track is renamed. Disc subdirectories
// left empty by a rename are cleaned up.
func renameTracks(ctx context.Context, cfg *Config, r *release.Release, dir string) error {
	type rename struct {
		idx      int
		from, to string
	}
	var renames []rename
	for i, t := range r.Tracks {
		want := r.TrackFilename(t)
		if want == "" {
			return nil
		}
		if t.Path == want {
			continue
		}
		renames = append(renames, rename{i, t.Path, want})
	}

	for _, rn := range renames {
		src, dst := filepath.Join(dir, rn.from), filepath.Join(dir, rn.to)
		if !cfg.DryRun {
			if _, err := os.Stat(dst); err == nil && !strings.EqualFold(rn.from, rn.to) {
				slog.WarnContext(ctx, "rename target already exists", "path", dst)
				continue
			}
			if err := renameRetry(ctx, src, dst); err != nil {
				return fmt.Errorf("rename track: %w", err)
			}
			if sub := filepath.Dir(src); sub != filepath.Clean(dir) {
				if err := fileutil.RemoveEmptyParents(sub, dir); err != nil {
					slog.WarnContext(ctx, "remove empty dirs", "err", err)
				}
			}
		}
		r.Tracks[rn.idx].Path = rn.to
	}
	return nil
}

func folderNameViolations(cfg *Config, r *release.Release, folderName string, skipCompare bool) []release.Violation {
	if !r.CanValidateFolderName() {
		return []release.Violation{release.Violationf(release.KindFolderName, "not enough metadata to compute a folder name")}
	}
	if skipCompare {
		return nil
	}
	want := r.FolderName(!cfg.FullCodecNames, cfg.GroupByCategory)
	if folderName != want {
		return []release.Violation{release.Violationf(release.KindFolderName, "folder name %q should be %q", folderName, want)}
	}
	return nil
}

func unreadableViolations(paths []string) []release.Violation {
	var violations []release.Violation
	for _, p := range paths {
		violations = append(violations, release.Violationf(release.KindUnreadable, "could not read tags from %q", p))
	}
	return violations
}

// GuessGroupByCategory reports whether a library looks organized into
// category folders, either because dir is one itself or because it only
// contains them.
func GuessGroupByCategory(dir string) bool {
	if isCategoryName(filepath.Base(dir)) {
		return true
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() || !isCategoryName(entry.Name()) {
			return false
		}
	}
	return true
}

func isCategoryName(name string) bool {
	for _, c := range release.Categories() {
		if strings.EqualFold(name, string(c)) {
			return true
		}
	}
	return false
}
