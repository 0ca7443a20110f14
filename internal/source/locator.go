// Package source finds the directories holding a library's code and headers
// inside an Arduino installation.
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vk/boardsmith/internal/catalog"
	"github.com/vk/boardsmith/internal/ctxlog"
	"github.com/vk/boardsmith/internal/faults"
	"github.com/vk/boardsmith/internal/fsutil"
)

// UtilityDir is the optional subdirectory some libraries keep helper sources in.
const UtilityDir = "utility"

// Locator resolves a library to its source directories.
type Locator interface {
	// Locate returns the source directories of library. The variant only
	// matters for the core library; other libraries ignore it.
	Locate(ctx context.Context, library, variant string) ([]string, error)
}

// FSLocator locates libraries on disk. Results are memoized because the
// planner asks for the core library once per job.
type FSLocator struct {
	root string
	memo *lru.Cache[string, []string]
}

// NewFSLocator returns a locator for the Arduino installation at arduinoRoot.
func NewFSLocator(arduinoRoot string) (*FSLocator, error) {
	memo, err := lru.New[string, []string](256)
	if err != nil {
		return nil, fmt.Errorf("creating locator cache: %w", err)
	}
	return &FSLocator{root: arduinoRoot, memo: memo}, nil
}

// CoreRoot is the directory holding the core library sources.
func (l *FSLocator) CoreRoot() string {
	return filepath.Join(l.root, "hardware", "arduino", "cores", "arduino")
}

// VariantDir is the directory holding the pin definitions of a board variant.
func (l *FSLocator) VariantDir(variant string) string {
	return filepath.Join(l.root, "hardware", "arduino", "variants", variant)
}

// LibraryRoot is the directory a non-core library lives in.
func (l *FSLocator) LibraryRoot(library string) string {
	return filepath.Join(l.root, "libraries", library)
}

// Locate implements Locator.
//
// The core library resolves to each immediate subdirectory of the core root,
// then the core root, then the variant directory. Any other library resolves
// to its root plus its utility subdirectory when one exists.
func (l *FSLocator) Locate(ctx context.Context, library, variant string) ([]string, error) {
	key := library
	if library == catalog.Core {
		key = library + "@" + variant
	}
	if dirs, ok := l.memo.Get(key); ok {
		return slices.Clone(dirs), nil
	}

	var (
		dirs []string
		err  error
	)
	if library == catalog.Core {
		dirs, err = l.locateCore(variant)
	} else {
		dirs, err = l.locateLibrary(library)
	}
	if err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("Located library sources.", "library", library, "variant", variant, "dirs", dirs)
	l.memo.Add(key, dirs)
	return slices.Clone(dirs), nil
}

func (l *FSLocator) locateCore(variant string) ([]string, error) {
	core := l.CoreRoot()
	if !fsutil.IsDir(core) {
		return nil, fmt.Errorf("%w: %s (expected at %s)", faults.ErrLibraryNotFound, catalog.Core, core)
	}
	subdirs, err := fsutil.Subdirectories(core)
	if err != nil {
		return nil, fmt.Errorf("listing core sources: %w", err)
	}
	return append(subdirs, core, l.VariantDir(variant)), nil
}

func (l *FSLocator) locateLibrary(library string) ([]string, error) {
	root := l.LibraryRoot(library)
	if !fsutil.IsDir(root) {
		return nil, fmt.Errorf("%w: %s (expected at %s)", faults.ErrLibraryNotFound, library, root)
	}
	dirs := []string{root}
	if util := filepath.Join(root, UtilityDir); fsutil.IsDir(util) {
		dirs = append(dirs, util)
	}
	return dirs, nil
}
