package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/vk/boardsmith/internal/ctxlog"
	"github.com/vk/boardsmith/internal/faults"
	"github.com/vk/boardsmith/internal/planner"
)

var projectVarPatterns = map[string]*regexp.Regexp{
	"BOARD":     regexp.MustCompile(`^BOARD\s*=([^#]*)`),
	"LIBRARIES": regexp.MustCompile(`^LIBRARIES\s*=([^#]*)`),
}

// ProjectSettings names what a project is built for.
type ProjectSettings struct {
	Board     string
	Libraries []string
}

// ReadProjectSettings takes BOARD and LIBRARIES from the environment and
// falls back to the Makefile in dir for whichever is unset.
func ReadProjectSettings(dir string, lookup func(string) (string, bool)) (*ProjectSettings, error) {
	values := map[string]string{}
	for name := range projectVarPatterns {
		if v, ok := lookup(name); ok {
			values[name] = v
		}
	}

	if len(values) < len(projectVarPatterns) {
		path := filepath.Join(dir, "Makefile")
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("no Makefile in %s", dir)
			}
			return nil, err
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() && len(values) < len(projectVarPatterns) {
			for name, re := range projectVarPatterns {
				if _, ok := values[name]; ok {
					continue
				}
				if m := re.FindStringSubmatch(scanner.Text()); m != nil {
					values[name] = m[1]
				}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		for name := range projectVarPatterns {
			if _, ok := values[name]; !ok {
				return nil, fmt.Errorf("%s does not set %s", path, name)
			}
		}
	}

	board := strings.TrimSpace(values["BOARD"])
	if board == "" {
		return nil, fmt.Errorf("%w: BOARD is empty", faults.ErrUnknownBoard)
	}
	return &ProjectSettings{Board: board, Libraries: strings.Fields(values["LIBRARIES"])}, nil
}

// ProjectReport describes a project build and the library build before it.
type ProjectReport struct {
	Settings  *ProjectSettings
	Libraries *BuildReport
	// Project is the build tool output of the project itself.
	Project faults.LibraryLog
}

// MakeProject builds the libraries a project needs and then runs the build
// tool in dir with the project's own Makefile. A failing library build
// returns its *faults.BuildFailedError and no report. A failing project build
// returns the report together with an error wrapping faults.ErrBuildFailed.
func (a *App) MakeProject(ctx context.Context, dir string) (*ProjectReport, error) {
	ctx, logger := ctxlog.With(a.withLogger(ctx), "project", dir)

	settings, err := ReadProjectSettings(dir, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	logger.Info("Project build starting.", "board", settings.Board, "libraries", settings.Libraries)

	profile, err := a.lookupBoard(ctx, settings.Board)
	if err != nil {
		return nil, err
	}
	srcDirs, err := a.SourceDirs(ctx, settings.Board, settings.Libraries)
	if err != nil {
		return nil, err
	}

	libs, err := a.BuildLibraries(ctx, settings.Board, settings.Libraries)
	if err != nil {
		return nil, err
	}

	job := &planner.ProjectJob{
		Board:       profile,
		CFlags:      profile.CFlags(a.settings.ArduinoVersion),
		SourceDirs:  srcDirs,
		LibIncludes: FormatLibraries(libs, LinkOptions{DirFlags: true, NameFlags: true}),
		Dir:         dir,
	}
	start := time.Now()
	res := a.project.RunProject(ctx, job)

	report := &ProjectReport{
		Settings:  settings,
		Libraries: libs,
		Project: faults.LibraryLog{
			Library:  planner.ProjectName,
			ExitCode: res.ExitCode,
			Failed:   res.Failed(),
			Output:   res.Log(),
		},
	}
	if res.Failed() {
		logger.Error("Project build failed.", "exit_code", res.ExitCode, "error", res.Err, "duration", time.Since(start))
		if res.Err != nil {
			return report, fmt.Errorf("%w: %s: %w", faults.ErrBuildFailed, planner.ProjectName, res.Err)
		}
		return report, fmt.Errorf("%w: %s exited with status %d", faults.ErrBuildFailed, planner.ProjectName, res.ExitCode)
	}
	logger.Info("Project build finished.", "duration", time.Since(start))
	return report, nil
}
