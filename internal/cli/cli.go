package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/boardsmith/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Exit codes.
const (
	CodeFailure = 1
	CodeUsage   = 2
)

// SettingsFile is the name of the settings file looked up in the home
// directory and in the working directory.
const SettingsFile = ".boardsmith.hcl"

// Command is a parsed subcommand invocation.
type Command struct {
	Name      string
	Board     string
	Libraries []string
	// Key is the BOARD.PROPERTY argument of the property command.
	Key string
	// Dir is the project directory of the make command.
	Dir string

	IncludeFlags bool // src -I
	DirFlags     bool // lib -L
	NameFlags    bool // lib -l
	Verbose      bool // lib -v
	NoColor      bool
}

const usage = `
boardsmith - build board libraries for embedded projects.

Usage:
  boardsmith [options] COMMAND [ARGS]

Commands:
  list                                 List all available boards.
  cflags BOARD                         Print the compiler flags for a board.
  property BOARD.PROP                  Print a board property from boards.txt.
  src [--board B] [-I] LIB...          Print source directories of libraries.
  obj LIB                              Print the object file names of a library.
  order LIB...                         Print libraries in build order.
  lib --board B [-L] [-l] [-v] LIB...  Build libraries and print their directories.
  make [DIR]                           Build a project's libraries, then the project.

Options:
`

// Parse processes command-line arguments. It returns the app configuration,
// the parsed command, a boolean indicating if the program should exit
// cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, *Command, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("boardsmith", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usage)
		flagSet.PrintDefaults()
	}

	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	configFlag := flagSet.String("config", "", "Additional settings file, read after ~/"+SettingsFile+" and ./"+SettingsFile+".")
	noColorFlag := flagSet.Bool("no-color", false, "Disable colored output.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, true, nil
		}
		return nil, nil, false, &ExitError{Code: CodeUsage, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		slog.Debug("No command provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, nil, true, nil
	}

	cmd, help, err := parseCommand(flagSet.Arg(0), flagSet.Args()[1:], output)
	if err != nil || help {
		return nil, nil, help, err
	}
	cmd.NoColor = *noColorFlag

	cfg, err := app.NewConfig(app.Config{
		SettingsPaths: settingsPaths(*configFlag),
		DotEnvPaths:   []string{".env"},
		LogFormat:     *logFormatFlag,
		LogLevel:      *logLevelFlag,
	})
	if err != nil {
		return nil, nil, false, &ExitError{Code: CodeUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "command", cmd.Name)
	return cfg, cmd, false, nil
}

func settingsPaths(extra string) []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, SettingsFile))
	}
	paths = append(paths, SettingsFile)
	if extra != "" {
		paths = append(paths, extra)
	}
	return paths
}

// parseCommand parses a subcommand's flags and positional arguments. Flags
// may appear before, between or after positionals.
func parseCommand(name string, args []string, output io.Writer) (*Command, bool, error) {
	cmd := &Command{Name: name}
	fs := flag.NewFlagSet("boardsmith "+name, flag.ContinueOnError)
	fs.SetOutput(output)

	var minArgs, maxArgs int
	switch name {
	case "list":
		minArgs, maxArgs = 0, 0
	case "cflags", "obj", "property":
		minArgs, maxArgs = 1, 1
	case "src":
		fs.StringVar(&cmd.Board, "board", "", "Board whose core variant to use (default variant 'standard').")
		fs.BoolVar(&cmd.IncludeFlags, "I", false, "Add a -I before each directory.")
		minArgs, maxArgs = 0, -1
	case "order":
		minArgs, maxArgs = 0, -1
	case "lib":
		fs.StringVar(&cmd.Board, "board", "", "Board to compile for (required).")
		fs.BoolVar(&cmd.DirFlags, "L", false, "Add a -L before each directory.")
		fs.BoolVar(&cmd.NameFlags, "l", false, "Append -l flags for every compiled archive, e.g. -lethernet -lspi -lcore.")
		fs.BoolVar(&cmd.Verbose, "v", false, "Print the build output of every library.")
		minArgs, maxArgs = 0, -1
	case "make":
		minArgs, maxArgs = 0, 1
	default:
		return nil, false, &ExitError{Code: CodeUsage, Message: fmt.Sprintf("unknown command %q", name)}
	}

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, true, nil
			}
			return nil, false, &ExitError{Code: CodeUsage, Message: err.Error()}
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}

	if len(positional) < minArgs || (maxArgs >= 0 && len(positional) > maxArgs) {
		return nil, false, &ExitError{Code: CodeUsage, Message: fmt.Sprintf("%s: wrong number of arguments", name)}
	}
	if name == "lib" && cmd.Board == "" {
		return nil, false, &ExitError{Code: CodeUsage, Message: "lib: --board is required"}
	}

	switch name {
	case "cflags":
		cmd.Board = positional[0]
	case "property":
		cmd.Key = positional[0]
		if !strings.Contains(cmd.Key, ".") {
			return nil, false, &ExitError{Code: CodeUsage, Message: "property: argument must have the form BOARD.PROPERTY"}
		}
	case "make":
		cmd.Dir = "."
		if len(positional) == 1 {
			cmd.Dir = positional[0]
		}
	default:
		cmd.Libraries = positional
	}
	return cmd, false, nil
}
