package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vk/boardsmith/internal/ctxlog"
)

const (
	DefaultArduinoRoot = "/usr/share/arduino"
	DefaultCompileRoot = "~/.boardsmith"

	// EnvPrefix prefixes every environment variable that overrides a setting.
	EnvPrefix = "BOARDSMITH_"
)

// Settings is the fully resolved configuration: paths are absolute or at
// least free of "~", and the platform version is known.
type Settings struct {
	ArduinoRoot    string
	ArduinoVersion int
	CompileRoot    string
	ToolRoot       string
	BuildTool      []string
	Libraries      map[string][]string
}

// Defaults returns the built-in base layer. The tool root defaults to the
// directory holding the running executable, where the makefiles ship.
func Defaults() *Model {
	m := &Model{
		ArduinoRoot: DefaultArduinoRoot,
		CompileRoot: DefaultCompileRoot,
		BuildTool:   []string{"make"},
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		m.ToolRoot = filepath.Dir(exe)
	}
	return m
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Files that do not exist are skipped and variables already set
// are never overridden.
func LoadDotEnv(ctx context.Context, paths ...string) error {
	logger := ctxlog.FromContext(ctx)
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		logger.Debug("Loaded environment file.", "path", path)
	}
	return nil
}

// FromEnv builds the environment layer from BOARDSMITH_* variables.
// BOARDSMITH_BUILD_TOOL is split on whitespace.
func FromEnv(lookup func(string) (string, bool)) (*Model, error) {
	m := &Model{}
	get := func(name string) string {
		v, _ := lookup(EnvPrefix + name)
		return strings.TrimSpace(v)
	}

	m.ArduinoRoot = get("ARDUINO_ROOT")
	m.CompileRoot = get("COMPILE_ROOT")
	m.ToolRoot = get("TOOL_ROOT")
	m.BuildTool = strings.Fields(get("BUILD_TOOL"))
	if v := get("ARDUINO_VERSION"); v != "" {
		version, err := ParseVersion(v)
		if err != nil {
			return nil, fmt.Errorf("%sARDUINO_VERSION: %w", EnvPrefix, err)
		}
		m.ArduinoVersion = version
	}
	return m, nil
}

// Resolve turns a merged model into Settings. "~" is expanded against home,
// and when no version was configured it is read from
// <arduino_root>/lib/version.txt.
func Resolve(ctx context.Context, m *Model, home string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)

	s := &Settings{
		ArduinoRoot:    ExpandHome(m.ArduinoRoot, home),
		ArduinoVersion: m.ArduinoVersion,
		CompileRoot:    ExpandHome(m.CompileRoot, home),
		ToolRoot:       ExpandHome(m.ToolRoot, home),
		BuildTool:      append([]string(nil), m.BuildTool...),
		Libraries:      m.Libraries,
	}

	if s.ArduinoVersion == 0 {
		version, err := ReadPlatformVersion(s.ArduinoRoot)
		if err != nil {
			return nil, err
		}
		s.ArduinoVersion = version
		logger.Debug("Platform version read from installation.", "version", version)
	}

	logger.Debug("Settings resolved.",
		"arduino_root", s.ArduinoRoot,
		"arduino_version", s.ArduinoVersion,
		"compile_root", s.CompileRoot,
		"tool_root", s.ToolRoot,
		"build_tool", s.BuildTool,
		"library_overrides", len(s.Libraries),
	)
	return s, nil
}

// ReadPlatformVersion reads and parses <root>/lib/version.txt.
func ReadPlatformVersion(root string) (int, error) {
	path := filepath.Join(root, "lib", "version.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("unable to find version.txt, set arduino_version in the configuration: %w", err)
	}
	version, err := ParseVersion(string(data))
	if err != nil {
		return 0, fmt.Errorf("unable to parse %s, set arduino_version in the configuration: %w", path, err)
	}
	return version, nil
}

// ParseVersion converts a dotted version such as "1.0.5" into the integer
// the platform's ARDUINO macro uses (105).
func ParseVersion(s string) (int, error) {
	digits := strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	v, err := strconv.Atoi(digits)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid platform version %q", strings.TrimSpace(s))
	}
	return v, nil
}

// ExpandHome replaces a leading "~" with home.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
