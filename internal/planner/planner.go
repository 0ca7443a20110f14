// Package planner turns each library of a resolved closure into a Job: the
// complete set of inputs the external build tool needs to compile that
// library for one board.
package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vk/boardsmith/internal/artifactcache"
	"github.com/vk/boardsmith/internal/boards"
	"github.com/vk/boardsmith/internal/catalog"
	"github.com/vk/boardsmith/internal/ctxlog"
	"github.com/vk/boardsmith/internal/fsutil"
	"github.com/vk/boardsmith/internal/resolver"
	"github.com/vk/boardsmith/internal/source"
)

// ObjectExt replaces the source extension in object file names.
const ObjectExt = ".o"

// sourceExts are scanned in this order within each directory.
var sourceExts = []string{".c", ".cpp"}

// Planner builds Jobs.
type Planner struct {
	locator         source.Locator
	cache           *artifactcache.Cache
	platformVersion int
}

// New returns a planner. platformVersion is the Arduino version number
// passed to the compiler as -DARDUINO.
func New(locator source.Locator, cache *artifactcache.Cache, platformVersion int) *Planner {
	return &Planner{
		locator:         locator,
		cache:           cache,
		platformVersion: platformVersion,
	}
}

// Plan assembles the job for one library of the resolution. The library's
// output directory is created in the artifact cache as a side effect.
func (p *Planner) Plan(ctx context.Context, library string, board *boards.Profile, res *resolver.Resolution) (*Job, error) {
	logger := ctxlog.FromContext(ctx).With("library", library, "board", board.ID)

	if !res.Contains(library) {
		return nil, fmt.Errorf("library %q is not part of the resolved closure", library)
	}
	if library == catalog.Math {
		return nil, fmt.Errorf("library %q is provided by the toolchain and is not built", library)
	}

	coreDirs, err := p.locator.Locate(ctx, catalog.Core, board.Variant)
	if err != nil {
		return nil, err
	}

	var ownDirs, srcDirs []string
	if library == catalog.Core {
		ownDirs = coreDirs
		srcDirs = slices.Clone(coreDirs)
	} else {
		ownDirs, err = p.locator.Locate(ctx, library, catalog.NoVariant)
		if err != nil {
			return nil, err
		}
		srcDirs = append(slices.Clone(ownDirs), coreDirs...)
		for _, dep := range res.Dependencies(library) {
			if catalog.IsFoundational(dep) {
				continue
			}
			depDirs, err := p.locator.Locate(ctx, dep, catalog.NoVariant)
			if err != nil {
				return nil, fmt.Errorf("dependency of %s: %w", library, err)
			}
			srcDirs = append(srcDirs, depDirs...)
		}
	}
	srcDirs = dedupe(srcDirs)

	objects, err := ObjectNames(ownDirs)
	if err != nil {
		return nil, fmt.Errorf("listing sources of %s: %w", library, err)
	}

	outDir, err := p.cache.EnsureDir(ctx, board.ID, library)
	if err != nil {
		return nil, err
	}

	job := &Job{
		Library:    library,
		Board:      board,
		SourceDirs: srcDirs,
		Objects:    objects,
		CFlags:     board.CFlags(p.platformVersion),
		OutputDir:  outDir,
	}
	logger.Debug("Planned build job.", "source_dirs", len(srcDirs), "objects", len(objects), "output_dir", outDir)
	return job, nil
}

// PlanAll plans every buildable library of the resolution in build order.
// The math library has no sources and is skipped.
func (p *Planner) PlanAll(ctx context.Context, board *boards.Profile, res *resolver.Resolution) ([]*Job, error) {
	jobs := make([]*Job, 0, len(res.Order))
	for _, lib := range res.Order {
		if lib == catalog.Math {
			continue
		}
		job, err := p.Plan(ctx, lib, board, res)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Objects returns the object file names a library compiles to. The variant
// only affects the core library, whose variant directory holds headers alone.
func (p *Planner) Objects(ctx context.Context, library, variant string) ([]string, error) {
	dirs, err := p.locator.Locate(ctx, library, variant)
	if err != nil {
		return nil, err
	}
	return ObjectNames(dirs)
}

// ObjectNames lists the object file names for the C and C++ sources directly
// inside dirs.
func ObjectNames(dirs []string) ([]string, error) {
	var objects []string
	for _, dir := range dirs {
		for _, ext := range sourceExts {
			files, err := fsutil.FilesWithExtension(dir, ext)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				base := filepath.Base(f)
				objects = append(objects, strings.TrimSuffix(base, ext)+ObjectExt)
			}
		}
	}
	return objects, nil
}

func dedupe(dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	out := dirs[:0]
	for _, d := range dirs {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
