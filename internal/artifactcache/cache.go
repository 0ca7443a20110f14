// Package artifactcache maps a (board, library) pair to the persistent
// directory its compiled objects and archive live in. Directories are created
// on demand and never removed; keeping them fresh is left to the external
// build tool's own timestamp checks.
package artifactcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/boardsmith/internal/ctxlog"
	"github.com/vk/boardsmith/internal/faults"
)

// DirMode is the permission set of newly created cache directories.
const DirMode fs.FileMode = 0o775

// Cache is rooted at a single compile directory.
type Cache struct {
	root string
}

// New returns a cache rooted at root.
func New(root string) *Cache {
	return &Cache{root: root}
}

// Root returns the cache's root directory.
func (c *Cache) Root() string {
	return c.root
}

// Path returns the directory for board and library without touching the disk.
func (c *Cache) Path(board, library string) string {
	return filepath.Join(c.root, board, library)
}

// EnsureDir returns the directory for board and library, creating it if it
// does not exist yet. Calling it again for the same pair returns the same
// path. Any filesystem failure other than the directory already existing
// is reported as faults.ErrCacheUnavailable.
func (c *Cache) EnsureDir(ctx context.Context, board, library string) (string, error) {
	if err := validKey(board); err != nil {
		return "", fmt.Errorf("%w: board %w", faults.ErrCacheUnavailable, err)
	}
	if err := validKey(library); err != nil {
		return "", fmt.Errorf("%w: library %w", faults.ErrCacheUnavailable, err)
	}

	dir := c.Path(board, library)
	if err := os.MkdirAll(dir, DirMode); err != nil && !errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%w: %w", faults.ErrCacheUnavailable, err)
	}
	ctxlog.FromContext(ctx).Debug("Artifact cache directory ready.", "board", board, "library", library, "dir", dir)
	return dir, nil
}

func validKey(s string) error {
	switch {
	case s == "":
		return errors.New("name is empty")
	case s == "." || s == "..":
		return fmt.Errorf("name %q is not allowed", s)
	case strings.ContainsAny(s, `/\`):
		return fmt.Errorf("name %q contains a path separator", s)
	}
	return nil
}
