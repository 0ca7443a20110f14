package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/vk/boardsmith/internal/ctxlog"
	"github.com/vk/boardsmith/internal/planner"
)

// DefaultTool is the build tool invoked when none is configured.
var DefaultTool = []string{"make"}

// CommandRunner runs the build tool as a child process in the job's output
// directory, or in the project directory for a project build. The makefile is chosen per library: <ToolRoot>/libraries/<lib>.mk
// when it exists, <ToolRoot>/Library.mk otherwise.
type CommandRunner struct {
	// Tool is the command and leading arguments; "-f <makefile>" is appended
	// for library builds.
	Tool []string
	// ToolRoot holds Library.mk and the per-library makefiles. It is also
	// appended to PATH so helper scripts next to the makefiles can be found.
	ToolRoot string
	// Path is the PATH handed to the tool. Empty means the current process's PATH.
	Path string
}

// Makefile returns the makefile used for library.
func (r *CommandRunner) Makefile(library string) string {
	custom := filepath.Join(r.ToolRoot, "libraries", library+".mk")
	if _, err := os.Stat(custom); err == nil {
		return custom
	}
	return filepath.Join(r.ToolRoot, "Library.mk")
}

// Run implements Runner.
func (r *CommandRunner) Run(ctx context.Context, job *planner.Job) *Result {
	return r.invoke(ctx, job.Library, job.OutputDir, job.Env(), "-f", r.Makefile(job.Library))
}

// RunProject implements ProjectRunner. The tool reads the Makefile found in
// the project directory.
func (r *CommandRunner) RunProject(ctx context.Context, job *planner.ProjectJob) *Result {
	return r.invoke(ctx, planner.ProjectName, job.Dir, job.Env())
}

func (r *CommandRunner) invoke(ctx context.Context, name, dir string, vars map[string]string, extra ...string) *Result {
	tool := r.Tool
	if len(tool) == 0 {
		tool = DefaultTool
	}
	args := append(append([]string(nil), tool[1:]...), extra...)

	// Builds are never cancelled once started, so the context only carries the logger.
	cmd := exec.Command(tool[0], args...)
	cmd.Dir = dir
	cmd.Env = r.environ(vars)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	ctxlog.FromContext(ctx).Debug("Launching build tool.", "target", name, "command", cmd.String(), "dir", cmd.Dir)
	err := cmd.Run()

	res := &Result{Library: name, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			res.Err = fmt.Errorf("running %s: %w", tool[0], err)
		}
	}
	return res
}

// environ builds the tool's environment from vars alone; nothing else
// from the parent process leaks through except PATH.
func (r *CommandRunner) environ(vars map[string]string) []string {
	path := r.Path
	if path == "" {
		path = os.Getenv("PATH")
	}
	if r.ToolRoot != "" {
		path += string(os.PathListSeparator) + r.ToolRoot
	}

	vars["PATH"] = path

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env
}
