// Package faults defines the error taxonomy shared by the resolver, planner,
// artifact cache, and build orchestrator. Every failure that ends a build
// invocation wraps exactly one of the sentinel errors below, so callers can
// classify it with errors.Is and pull details out with errors.As.
package faults

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownBoard     = errors.New("unknown board")
	ErrLibraryNotFound  = errors.New("library not found")
	ErrCyclicDependency = errors.New("cyclic dependency")
	ErrCacheUnavailable = errors.New("artifact cache unavailable")
	ErrBuildFailed      = errors.New("build failed")
)

// CycleError reports the libraries left unresolved once no further library
// could be ordered.
type CycleError struct {
	Libraries []string
}

func (e *CycleError) Error() string {
	libs := append([]string(nil), e.Libraries...)
	sort.Strings(libs)
	return fmt.Sprintf("%s between libraries: %s", ErrCyclicDependency, strings.Join(libs, ", "))
}

func (e *CycleError) Unwrap() error { return ErrCyclicDependency }

// LibraryLog is the captured output of one external build invocation.
type LibraryLog struct {
	Library  string
	ExitCode int
	Failed   bool
	Output   string
}

// BuildFailedError carries the logs of every library in a failed batch,
// including the ones that built cleanly. Cause is set when at least one
// build tool could not be run at all, as opposed to exiting non-zero.
type BuildFailedError struct {
	Logs  []LibraryLog
	Cause error
}

// Failed returns the names of the libraries whose build failed, in batch order.
func (e *BuildFailedError) Failed() []string {
	var names []string
	for _, l := range e.Logs {
		if l.Failed {
			names = append(names, l.Library)
		}
	}
	return names
}

func (e *BuildFailedError) Error() string {
	failed := e.Failed()
	msg := fmt.Sprintf("%s for %d of %d libraries: %s", ErrBuildFailed, len(failed), len(e.Logs), strings.Join(failed, ", "))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *BuildFailedError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrBuildFailed}
	}
	return []error{ErrBuildFailed, e.Cause}
}
