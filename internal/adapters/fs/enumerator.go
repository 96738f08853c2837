package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceEnumerator = (*Enumerator)(nil)

// Enumerator lists unit sources on disk.
type Enumerator struct {
	walker  *Walker
	logger  ports.Logger
	ignores []string
}

// NewEnumerator creates an Enumerator. Files and directories matching one of
// ignores are left out.
func NewEnumerator(walker *Walker, logger ports.Logger, ignores ...string) *Enumerator {
	return &Enumerator{walker: walker, logger: logger, ignores: ignores}
}

// Enumerate walks every dir and returns the matching files with their
// modification time. A dir that does not exist contributes nothing, so
// removing a whole directory reads as deleting its sources. It is logged,
// since a mistyped or unmounted dir unloads every unit it declared.
func (e *Enumerator) Enumerate(
	ctx context.Context,
	dirs, extensions []string,
) (map[domain.InternedString]int64, error) {
	out := make(map[domain.InternedString]int64)

	for _, dir := range dirs {
		dir = filepath.Clean(dir)

		info, err := os.Stat(dir)
		if errors.Is(err, iofs.ErrNotExist) {
			e.logger.Warn("source directory does not exist", "dir", dir)
			continue
		}
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to stat source directory"), "dir", dir)
		}
		if !info.IsDir() {
			return nil, zerr.With(zerr.New("source directory is not a directory"), "dir", dir)
		}

		for path := range e.walker.WalkFiles(dir, e.ignores) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !hasExtension(path, extensions) {
				continue
			}

			fi, err := os.Stat(path)
			if errors.Is(err, iofs.ErrNotExist) {
				// Removed while walking.
				continue
			}
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to stat source"), "path", path)
			}
			out[domain.NewInternedString(path)] = fi.ModTime().UnixNano()
		}
	}

	return out, nil
}

func hasExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(extensions, ext)
}
