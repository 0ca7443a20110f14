package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/boardsmith/internal/app"
	"github.com/vk/boardsmith/internal/cli"
	"github.com/vk/boardsmith/internal/hcl_adapter"
)

// main is the entrypoint for the boardsmith application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.CodeFailure)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Command output goes to outW, logs go to errW.
func run(outW, errW io.Writer, args []string) (err error) {
	appConfig, cmd, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = &cli.ExitError{Code: cli.CodeFailure, Message: fmt.Sprintf("application panicked: %v", r)}
		}
	}()

	a, err := app.NewApp(errW, appConfig, hcl_adapter.NewLoader())
	if err != nil {
		return &cli.ExitError{Code: cli.CodeFailure, Message: "Error: " + err.Error()}
	}

	return cli.Execute(context.Background(), a, cmd, outW)
}
