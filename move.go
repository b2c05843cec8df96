package centrifuge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.senan.xyz/centrifuge/fileutil"
	"go.senan.xyz/centrifuge/release"
)

// Dedup remembers which release occupies each fingerprint for the duration
// of one run, making duplicate resolution independent of scan order. Higher
// codec rank wins a collision, ties demote the arrival.
type Dedup struct {
	occupants map[release.Fingerprint]occupant
}

type occupant struct {
	rank int
	dir  string
}

func NewDedup() *Dedup {
	return &Dedup{occupants: map[release.Fingerprint]occupant{}}
}

func (d *Dedup) resolve(ctx context.Context, duplicateDir string, r *release.Release, dir, name string) (string, error) {
	fp := r.Fingerprint()
	occ, ok := d.occupants[fp]
	if !ok {
		d.occupants[fp] = occupant{rank: r.Rank(), dir: dir}
		return dir, nil
	}

	if r.Rank() > occ.rank {
		demoted, err := moveDuplicate(ctx, duplicateDir, occ.dir, filepath.Base(occ.dir))
		if err != nil {
			return dir, fmt.Errorf("demote occupant: %w", err)
		}
		slog.InfoContext(ctx, "demoted lower quality duplicate", "from", occ.dir, "to", demoted)
		d.occupants[fp] = occupant{rank: r.Rank(), dir: dir}
		return dir, nil
	}
	return moveDuplicate(ctx, duplicateDir, dir, name)
}

// moveRelease renames a clean release to its canonical folder name and moves
// it under the destination folder, resolving duplicates along the way. It
// returns the release's final directory.
func moveRelease(ctx context.Context, cfg *Config, dedup *Dedup, root string, r *release.Release, dir string) (string, error) {
	if cfg.DryRun || !r.CanValidateFolderName() {
		return dir, nil
	}

	name := r.FolderName(!cfg.FullCodecNames, cfg.GroupByCategory)
	moved := dir

	// canonical rename in place first, so a failed move still leaves a
	// well named folder behind
	if fixed := filepath.Join(filepath.Dir(dir), name); fixed != dir {
		if _, err := os.Stat(fixed); errors.Is(err, fs.ErrNotExist) || strings.EqualFold(dir, fixed) {
			if err := renameRetry(ctx, dir, fixed); err != nil {
				return dir, fmt.Errorf("rename release: %w", err)
			}
			moved = fixed
		} else {
			slog.ErrorContext(ctx, "release folder already exists", "path", fixed)
		}
	}

	var movedDuplicate bool
	if cfg.DestDir != "" {
		parts := []string{cfg.DestDir}
		if cfg.GroupByCategory {
			parts = append(parts, string(r.Category))
		}
		if cfg.GroupByArtist && !r.IsVA() {
			parts = append(parts, release.FlattenArtists(r.Artists()))
		}
		destParent := filepath.Join(parts...)
		dest := filepath.Join(destParent, name)

		if !strings.EqualFold(moved, dest) {
			if err := os.MkdirAll(destParent, os.ModePerm); err != nil {
				return moved, fmt.Errorf("create destination: %w", err)
			}
			if _, err := os.Stat(dest); errors.Is(err, fs.ErrNotExist) {
				if err := renameRetry(ctx, moved, dest); err != nil {
					return moved, fmt.Errorf("move release: %w", err)
				}
				if err := fileutil.RemoveEmptyParents(filepath.Dir(moved), root); err != nil {
					slog.WarnContext(ctx, "remove empty dirs", "err", err)
				}
				moved = dest
			} else if cfg.DuplicateDir != "" {
				dup, err := moveDuplicate(ctx, cfg.DuplicateDir, moved, name)
				if err != nil {
					return moved, err
				}
				moved, movedDuplicate = dup, true
			} else {
				slog.ErrorContext(ctx, "destination folder already exists", "path", dest)
			}
		}
	}

	if cfg.DuplicateDir != "" && !movedDuplicate {
		return dedup.resolve(ctx, cfg.DuplicateDir, r, moved, name)
	}
	return moved, nil
}

// moveInvalid moves a release that still has violations into the invalid
// destination folder, when one is configured and the violations qualify.
func moveInvalid(ctx context.Context, cfg *Config, dir string, violations []release.Violation) (string, error) {
	if cfg.DryRun || cfg.InvalidDestDir == "" {
		return dir, nil
	}
	if cfg.InvalidKind != "" && !release.HasKind(violations, cfg.InvalidKind) {
		return dir, nil
	}

	dest := filepath.Join(cfg.InvalidDestDir, filepath.Base(dir))
	if _, err := os.Stat(dest); err == nil {
		slog.ErrorContext(ctx, "invalid destination already exists", "path", dest)
		return dir, nil
	}
	if err := os.MkdirAll(cfg.InvalidDestDir, os.ModePerm); err != nil {
		return dir, fmt.Errorf("create invalid destination: %w", err)
	}
	if err := renameRetry(ctx, dir, dest); err != nil {
		return dir, fmt.Errorf("move invalid release: %w", err)
	}
	return dest, nil
}

// moveDuplicate finds a free name under duplicateDir and moves dir there,
// suffixing _1, _2, and so on when the name is taken.
func moveDuplicate(ctx context.Context, duplicateDir, dir, name string) (string, error) {
	if err := os.MkdirAll(duplicateDir, os.ModePerm); err != nil {
		return dir, fmt.Errorf("create duplicate folder: %w", err)
	}

	dest := filepath.Join(duplicateDir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(dest); errors.Is(err, fs.ErrNotExist) {
			break
		}
		dest = filepath.Join(duplicateDir, fmt.Sprintf("%s_%d", name, i))
	}

	if err := renameRetry(ctx, dir, dest); err != nil {
		return dir, fmt.Errorf("move duplicate: %w", err)
	}
	slog.InfoContext(ctx, "moved duplicate", "from", dir, "to", dest)
	return dest, nil
}

const renameRetryInterval = 1 * time.Second

// renameRetry retries renames that fail with a permission error, which can
// just mean another process briefly has a file open.
func renameRetry(ctx context.Context, src, dest string) error {
	for {
		err := os.Rename(src, dest)
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrPermission) {
			return err
		}
		slog.WarnContext(ctx, "permission denied, retrying rename", "src", src, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(renameRetryInterval):
		}
	}
}
