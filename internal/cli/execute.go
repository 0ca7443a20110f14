package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gookit/color"
	"github.com/vk/boardsmith/internal/app"
	"github.com/vk/boardsmith/internal/faults"
	"github.com/vk/boardsmith/internal/planner"
)

// Messages closing a build.
const (
	FatalBuildMessage    = "Fatal error, unable to compile all libraries."
	ProjectFailedMessage = "Oh no! Make failed :("
	ProjectBuiltMessage  = "Success!"
)

// Execute runs cmd against a and prints its result to outW. Failures are
// returned as *ExitError.
func Execute(ctx context.Context, a *app.App, cmd *Command, outW io.Writer) error {
	if cmd.NoColor {
		color.Enable = false
	}

	var err error
	switch cmd.Name {
	case "list":
		err = printBoards(ctx, a, outW)
	case "cflags":
		err = printValue(outW)(a.CFlags(ctx, cmd.Board))
	case "property":
		err = printValue(outW)(a.Property(ctx, cmd.Key))
	case "src":
		var dirs []string
		if dirs, err = a.SourceDirs(ctx, cmd.Board, cmd.Libraries); err == nil {
			if cmd.IncludeFlags {
				fmt.Fprintln(outW, planner.IncludeFlags(dirs))
			} else {
				fmt.Fprintln(outW, strings.Join(dirs, " "))
			}
		}
	case "obj":
		var objs []string
		if objs, err = a.Objects(ctx, cmd.Libraries[0]); err == nil {
			fmt.Fprintln(outW, strings.Join(objs, " "))
		}
	case "order":
		var order []string
		if order, err = a.Order(ctx, cmd.Libraries); err == nil {
			fmt.Fprintln(outW, strings.Join(order, " "))
		}
	case "lib":
		err = buildLibraries(ctx, a, cmd, outW)
	case "make":
		err = makeProject(ctx, a, cmd, outW)
	default:
		return &ExitError{Code: CodeUsage, Message: fmt.Sprintf("unknown command %q", cmd.Name)}
	}

	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: CodeFailure, Message: "Error: " + err.Error()}
}

func printValue(outW io.Writer) func(string, error) error {
	return func(v string, err error) error {
		if err != nil {
			return err
		}
		fmt.Fprintln(outW, v)
		return nil
	}
}

func printBoards(ctx context.Context, a *app.App, outW io.Writer) error {
	list, err := a.ListBoards(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(outW, 0, 8, 2, ' ', 0)
	for _, b := range list {
		fmt.Fprintf(tw, "%s\t'%s'\n", b.ID, b.Name)
	}
	return tw.Flush()
}

func buildLibraries(ctx context.Context, a *app.App, cmd *Command, outW io.Writer) error {
	report, err := a.BuildLibraries(ctx, cmd.Board, cmd.Libraries)

	var failed *faults.BuildFailedError
	if errors.As(err, &failed) {
		printLogs(outW, failed.Logs)
		return &ExitError{Code: CodeFailure, Message: color.Danger.Sprint(FatalBuildMessage)}
	}
	if err != nil {
		return err
	}

	if cmd.Verbose {
		printLogs(outW, report.Logs)
	}
	fmt.Fprintln(outW, app.FormatLibraries(report, app.LinkOptions{DirFlags: cmd.DirFlags, NameFlags: cmd.NameFlags}))
	return nil
}

func makeProject(ctx context.Context, a *app.App, cmd *Command, outW io.Writer) error {
	report, err := a.MakeProject(ctx, cmd.Dir)

	var failed *faults.BuildFailedError
	if errors.As(err, &failed) {
		printLogs(outW, failed.Logs)
		return &ExitError{Code: CodeFailure, Message: color.Danger.Sprint(FatalBuildMessage)}
	}
	if report == nil {
		return err
	}

	printLogs(outW, append(report.Libraries.Logs, report.Project))
	if err != nil {
		return &ExitError{Code: CodeFailure, Message: color.Danger.Sprint(ProjectFailedMessage)}
	}
	fmt.Fprintln(outW, color.Info.Sprint(ProjectBuiltMessage))
	return nil
}

func printLogs(outW io.Writer, logs []faults.LibraryLog) {
	for _, l := range logs {
		header := fmt.Sprintf("-- Output from %s build --", l.Library)
		if l.Failed {
			header = color.Danger.Sprint(header)
		} else {
			header = color.Info.Sprint(header)
		}
		fmt.Fprintln(outW, header)
		fmt.Fprintln(outW, l.Output)
	}
}
