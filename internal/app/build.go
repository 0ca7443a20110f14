package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vk/boardsmith/internal/catalog"
	"github.com/vk/boardsmith/internal/ctxlog"
	"github.com/vk/boardsmith/internal/executor"
	"github.com/vk/boardsmith/internal/faults"
	"github.com/vk/boardsmith/internal/resolver"
)

// BuildReport describes a successful build of a library set.
type BuildReport struct {
	RunID      string
	Resolution *resolver.Resolution
	// OutputDirs holds one compiled directory per built library, in build order.
	OutputDirs []string
	// Logs holds the build tool output of every library, in build order.
	Logs []faults.LibraryLog
}

// LinkNames returns the archive names to pass to the linker as -l flags:
// every built library lower-cased in link order, followed by "m" when the
// math library is part of the closure.
func (r *BuildReport) LinkNames() []string {
	var names []string
	for _, lib := range r.Resolution.LinkOrder() {
		if lib == catalog.Math {
			continue
		}
		names = append(names, strings.ToLower(lib))
	}
	if r.Resolution.Contains(catalog.Math) {
		names = append(names, "m")
	}
	return names
}

// LinkOptions selects how FormatLibraries renders a report.
type LinkOptions struct {
	// DirFlags prefixes every directory with -L.
	DirFlags bool
	// NameFlags appends -l flags for every archive.
	NameFlags bool
}

// FormatLibraries renders the report the way a makefile consumes it.
func FormatLibraries(r *BuildReport, opts LinkOptions) string {
	var out string
	if opts.DirFlags && len(r.OutputDirs) > 0 {
		out = "-L " + strings.Join(r.OutputDirs, " -L ")
	} else {
		out = strings.Join(r.OutputDirs, " ")
	}
	if opts.NameFlags {
		if names := r.LinkNames(); len(names) > 0 {
			out += " -l" + strings.Join(names, " -l")
		}
	}
	return strings.TrimSpace(out)
}

// BuildLibraries resolves the requested libraries plus core for a board,
// runs one build tool invocation per library concurrently and returns their
// compiled directories. If any build fails the error is a
// *faults.BuildFailedError carrying every library's log.
func (a *App) BuildLibraries(ctx context.Context, board string, libs []string) (*BuildReport, error) {
	runID := uuid.NewString()
	ctx, logger := ctxlog.With(a.withLogger(ctx), "run_id", runID, "board", board)
	logger.Info("Build run starting.", "requested", libs)
	start := time.Now()

	profile, err := a.lookupBoard(ctx, board)
	if err != nil {
		return nil, err
	}

	res, err := resolver.New(a.catalog).Resolve(ctx, withCore(libs))
	if err != nil {
		return nil, err
	}
	logger.Debug("Libraries resolved.", "order", res.Order)

	jobs, err := a.planner().PlanAll(ctx, profile, res)
	if err != nil {
		return nil, fmt.Errorf("planning build: %w", err)
	}

	outcome, err := executor.New(a.runner).BuildAll(ctx, jobs)
	if err != nil {
		logger.Error("Build run failed.", "error", err, "duration", time.Since(start))
		return nil, err
	}

	logger.Info("Build run finished.", "libraries", len(jobs), "duration", time.Since(start))
	return &BuildReport{
		RunID:      runID,
		Resolution: res,
		OutputDirs: outcome.OutputDirs,
		Logs:       outcome.Logs,
	}, nil
}
