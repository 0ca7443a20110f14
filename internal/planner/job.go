package planner

import (
	"strings"

	"github.com/vk/boardsmith/internal/boards"
)

// Job describes one external build tool invocation.
type Job struct {
	Library    string
	Board      *boards.Profile
	SourceDirs []string
	Objects    []string
	CFlags     string
	OutputDir  string
}

// IncludeFlags renders the source directories as compiler include flags.
func (j *Job) IncludeFlags() string {
	return IncludeFlags(j.SourceDirs)
}

// Env returns the variables the build tool reads its inputs from.
func (j *Job) Env() map[string]string {
	return map[string]string{
		"LIBRARY":       j.Library,
		"BOARD":         j.Board.ID,
		"BOARD_C_FLAGS": j.CFlags,
		"SRC_DIRS":      strings.Join(j.SourceDirs, " "),
		"INCLUDES":      j.IncludeFlags(),
		"LIBOBJS":       strings.Join(j.Objects, " "),
	}
}

// IncludeFlags prefixes every directory with -I.
func IncludeFlags(dirs []string) string {
	if len(dirs) == 0 {
		return ""
	}
	return "-I " + strings.Join(dirs, " -I ")
}

// ProjectName labels the project build in logs and results.
const ProjectName = "project"

// ProjectJob describes the build of the user's own project against the
// compiled libraries. It runs the build tool with the project's Makefile in
// Dir.
type ProjectJob struct {
	Board      *boards.Profile
	CFlags     string
	SourceDirs []string
	// LibIncludes holds the -L directories and -l archives in link order.
	LibIncludes string
	Dir         string
}

// Env returns the variables the project Makefile reads.
func (p *ProjectJob) Env() map[string]string {
	return map[string]string{
		"BOARD_C_FLAGS":   p.CFlags,
		"SRC_DIRS":        strings.Join(p.SourceDirs, " "),
		"HEADER_INCLUDES": IncludeFlags(p.SourceDirs),
		"LIB_INCLUDES":    p.LibIncludes,
	}
}
