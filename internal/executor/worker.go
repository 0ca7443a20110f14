package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/boardsmith/internal/ctxlog"
	"github.com/vk/boardsmith/internal/planner"
)

// run is the body of the goroutine that owns one job.
func (e *Executor) run(ctx context.Context, job *planner.Job) (res *Result) {
	ctx, logger := ctxlog.With(ctx, "library", job.Library)
	logger.Debug("Build invocation starting.", "dir", job.OutputDir)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res = &Result{Library: job.Library, ExitCode: -1, Err: fmt.Errorf("build runner panicked: %v", r)}
		}
		if res.Library == "" {
			res.Library = job.Library
		}
		res.Duration = time.Since(start)
		if res.Failed() {
			logger.Error("Build invocation failed.", "exit_code", res.ExitCode, "error", res.Err, "duration", res.Duration)
		} else {
			logger.Debug("Build invocation finished.", "duration", res.Duration)
		}
	}()

	res = e.runner.Run(ctx, job)
	if res == nil {
		res = &Result{ExitCode: -1, Err: fmt.Errorf("build runner returned no result")}
	}
	return res
}
