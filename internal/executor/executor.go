// Package executor runs the planned build jobs. Every job's external build
// tool is started at once; the executor then waits for all of them and
// reports the batch as a single success or a single failure.
package executor

import (
	"context"
	"time"

	"github.com/vk/boardsmith/internal/ctxlog"
	"github.com/vk/boardsmith/internal/faults"
	"github.com/vk/boardsmith/internal/planner"
	"golang.org/x/sync/errgroup"
)

// Runner performs one external build invocation.
type Runner interface {
	Run(ctx context.Context, job *planner.Job) *Result
}

// ProjectRunner builds the user's project once its libraries are compiled.
type ProjectRunner interface {
	RunProject(ctx context.Context, job *planner.ProjectJob) *Result
}

// Result is the raw outcome of one invocation. Err is set when the tool
// could not be started or waited on at all.
type Result struct {
	Library  string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Err      error
	Duration time.Duration
}

// Failed reports whether the invocation did not succeed.
func (r *Result) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

// Log returns the text shown for this invocation: standard output on
// success, standard output followed by standard error on failure.
func (r *Result) Log() string {
	if !r.Failed() {
		return string(r.Stdout)
	}
	out := string(r.Stdout) + string(r.Stderr)
	if r.Err != nil {
		out += r.Err.Error() + "\n"
	}
	return out
}

// Outcome is a fully successful batch.
type Outcome struct {
	// OutputDirs holds one directory per job, in job order.
	OutputDirs []string
	// Logs holds one entry per job, in job order.
	Logs []faults.LibraryLog
}

// Executor dispatches jobs to a Runner.
type Executor struct {
	runner Runner
}

// New creates an executor backed by runner.
func New(runner Runner) *Executor {
	return &Executor{runner: runner}
}

// BuildAll starts one invocation per job without waiting for any other,
// then collects every result in job order. If any invocation fails the
// whole call fails with a *faults.BuildFailedError carrying the logs of all
// jobs, successful or not, and the first error of a tool that could not be
// started as its Cause. A failing job never stops its siblings.
func (e *Executor) BuildAll(ctx context.Context, jobs []*planner.Job) (*Outcome, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting build batch.", "jobs", len(jobs))

	results := make([]*Result, len(jobs))
	var g errgroup.Group
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i] = e.run(ctx, job)
			// Exit codes are reported through the logs; only a tool that
			// could not run at all is an error of the group.
			return results[i].Err
		})
	}
	// The group has no context, so a failing worker never stops its siblings.
	cause := g.Wait()

	outcome := &Outcome{
		OutputDirs: make([]string, 0, len(jobs)),
		Logs:       make([]faults.LibraryLog, 0, len(jobs)),
	}
	failed := false
	for i, res := range results {
		outcome.OutputDirs = append(outcome.OutputDirs, jobs[i].OutputDir)
		outcome.Logs = append(outcome.Logs, faults.LibraryLog{
			Library:  res.Library,
			ExitCode: res.ExitCode,
			Failed:   res.Failed(),
			Output:   res.Log(),
		})
		failed = failed || res.Failed()
	}

	if failed {
		err := &faults.BuildFailedError{Logs: outcome.Logs, Cause: cause}
		logger.Debug("Build batch failed.", "failed", err.Failed())
		return nil, err
	}
	logger.Debug("Build batch succeeded.", "jobs", len(jobs))
	return outcome, nil
}
