package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/boardsmith/internal/app"
	"github.com/vk/boardsmith/internal/config"
	"github.com/vk/boardsmith/internal/hcl_adapter"
	"github.com/vk/boardsmith/internal/testutil"
)

func TestParse_Help(t *testing.T) {
	for _, args := range [][]string{nil, {"-h"}, {"lib", "-h"}} {
		out := &bytes.Buffer{}
		cfg, cmd, exit, err := Parse(args, out)
		require.NoError(t, err, args)
		assert.True(t, exit, args)
		assert.Nil(t, cfg)
		assert.Nil(t, cmd)
	}

	out := &bytes.Buffer{}
	_, _, _, _ = Parse(nil, out)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "lib --board B")
}

func TestParse_Commands(t *testing.T) {
	cfg, cmd, exit, err := Parse([]string{"-log-level", "debug", "-config", "extra.hcl", "lib", "Ethernet", "--board", "uno", "-l", "-L", "Wire", "-v"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "extra.hcl", cfg.SettingsPaths[len(cfg.SettingsPaths)-1])
	assert.Contains(t, cfg.SettingsPaths, SettingsFile)
	assert.Equal(t, &Command{
		Name:      "lib",
		Board:     "uno",
		Libraries: []string{"Ethernet", "Wire"},
		DirFlags:  true,
		NameFlags: true,
		Verbose:   true,
	}, cmd)

	_, cmd, _, err = Parse([]string{"-no-color", "src", "-I", "SPI"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, &Command{Name: "src", Libraries: []string{"SPI"}, IncludeFlags: true, NoColor: true}, cmd)

	_, cmd, _, err = Parse([]string{"cflags", "uno"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "uno", cmd.Board)

	_, cmd, _, err = Parse([]string{"property", "uno.build.mcu"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "uno.build.mcu", cmd.Key)

	_, cmd, _, err = Parse([]string{"make"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, &Command{Name: "make", Dir: "."}, cmd)

	_, cmd, _, err = Parse([]string{"make", "blink"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "blink", cmd.Dir)
}

func TestParse_UsageErrors(t *testing.T) {
	cases := map[string][]string{
		"unknown flag":    {"--this-is-not-a-valid-flag"},
		"unknown command": {"frobnicate"},
		"missing board":   {"lib", "SPI"},
		"cflags arity":    {"cflags"},
		"obj arity":       {"obj", "SPI", "Wire"},
		"list arity":      {"list", "extra"},
		"bad property":    {"property", "uno"},
		"bad log format":  {"-log-format", "xml", "list"},
		"unknown subflag": {"order", "-x"},
		"make arity":      {"make", "a", "b"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, _, err := Parse(args, &bytes.Buffer{})
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr), "got %v", err)
			assert.Equal(t, CodeUsage, exitErr.Code)
		})
	}
}

// fakeMake prints the library it builds and fails for Wire. The project
// build fails when the project directory holds a "fail" file.
const fakeMake = `
echo "made ${LIBRARY:-project}"
if [ -z "$LIBRARY" ] && [ -f fail ]; then
  exit 5
fi
if [ "$LIBRARY" = "Wire" ]; then
  echo "Wire broke" >&2
  exit 2
fi
`

func newApp(t *testing.T) (*app.App, string, string) {
	t.Helper()
	root := testutil.NewArduinoTree(t)
	compile := t.TempDir()
	tools := t.TempDir()
	tool := testutil.WriteScript(t, tools, "fake-make", fakeMake)
	testutil.WriteFiles(t, tools, map[string]string{"Library.mk": ""})

	cfg, err := app.NewConfig(app.Config{})
	require.NoError(t, err)
	a, err := app.NewApp(&testutil.SafeBuffer{}, cfg, hcl_adapter.NewLoader(), app.WithSettings(&config.Settings{
		ArduinoRoot:    root,
		ArduinoVersion: 105,
		CompileRoot:    compile,
		ToolRoot:       tools,
		BuildTool:      []string{tool},
	}))
	require.NoError(t, err)
	return a, root, compile
}

func execute(t *testing.T, a *app.App, args ...string) (string, error) {
	t.Helper()
	_, cmd, _, err := Parse(append([]string{"-no-color"}, args...), &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { color.Enable = true })
	out := &bytes.Buffer{}
	err = Execute(context.Background(), a, cmd, out)
	return out.String(), err
}

func TestExecute_Queries(t *testing.T) {
	a, root, _ := newApp(t)

	out, err := execute(t, a, "list")
	require.NoError(t, err)
	assert.Equal(t, "mega  'Arduino Mega'\nuno   'Arduino Uno'\n", out)

	out, err = execute(t, a, "cflags", "mega")
	require.NoError(t, err)
	assert.Equal(t, "-mmcu=atmega1280 -DF_CPU=16000000L -DARDUINO=105\n", out)

	out, err = execute(t, a, "property", "uno.build.variant")
	require.NoError(t, err)
	assert.Equal(t, "standard\n", out)

	out, err = execute(t, a, "src", "-I", "Wire")
	require.NoError(t, err)
	wire := filepath.Join(root, "libraries", "Wire")
	assert.Contains(t, out, fmt.Sprintf("-I %s -I %s -I ", wire, filepath.Join(wire, "utility")))

	out, err = execute(t, a, "obj", "Wire")
	require.NoError(t, err)
	assert.Equal(t, "Wire.o twi.o\n", out)

	out, err = execute(t, a, "order", "Ethernet")
	require.NoError(t, err)
	assert.Equal(t, "core SPI Ethernet\n", out)

	_, err = execute(t, a, "cflags", "nano")
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, CodeFailure, exitErr.Code)
	assert.Contains(t, exitErr.Message, "unknown board")
}

func TestExecute_Lib(t *testing.T) {
	a, _, compile := newApp(t)
	dir := func(lib string) string { return filepath.Join(compile, "uno", lib) }

	out, err := execute(t, a, "lib", "--board", "uno", "-L", "-l", "Ethernet")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("-L %s -L %s -L %s -lethernet -lspi -lcore\n", dir("core"), dir("SPI"), dir("Ethernet")), out)

	out, err = execute(t, a, "lib", "--board", "uno", "-v", "SPI")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf(
		"-- Output from core build --\nmade core\n\n-- Output from SPI build --\nmade SPI\n\n%s %s\n",
		dir("core"), dir("SPI")), out)
}

func TestExecute_LibFailure(t *testing.T) {
	a, _, _ := newApp(t)

	out, err := execute(t, a, "lib", "--board", "uno", "Wire")
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, CodeFailure, exitErr.Code)
	assert.Equal(t, FatalBuildMessage, exitErr.Message)
	assert.Equal(t, "-- Output from core build --\nmade core\n\n-- Output from Wire build --\nmade Wire\nWire broke\n\n", out)
}

func TestExecute_Make(t *testing.T) {
	t.Setenv("BOARD", "")
	t.Setenv("LIBRARIES", "")
	require.NoError(t, os.Unsetenv("BOARD"))
	require.NoError(t, os.Unsetenv("LIBRARIES"))
	a, _, _ := newApp(t)

	project := t.TempDir()
	testutil.WriteFiles(t, project, map[string]string{"Makefile": "BOARD = uno\nLIBRARIES = SPI\n"})
	out, err := execute(t, a, "make", project)
	require.NoError(t, err)
	assert.Equal(t, "-- Output from core build --\nmade core\n\n"+
		"-- Output from SPI build --\nmade SPI\n\n"+
		"-- Output from project build --\nmade project\n\n"+
		ProjectBuiltMessage+"\n", out)

	testutil.WriteFiles(t, project, map[string]string{"fail": ""})
	out, err = execute(t, a, "make", project)
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, CodeFailure, exitErr.Code)
	assert.Equal(t, ProjectFailedMessage, exitErr.Message)
	assert.Contains(t, out, "-- Output from project build --\nmade project\n")

	broken := t.TempDir()
	testutil.WriteFiles(t, broken, map[string]string{"Makefile": "BOARD = uno\nLIBRARIES = Wire\n"})
	out, err = execute(t, a, "make", broken)
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, FatalBuildMessage, exitErr.Message)
	assert.NotContains(t, out, "project build")

	_, err = execute(t, a, "make", t.TempDir())
	require.True(t, errors.As(err, &exitErr))
	assert.Contains(t, exitErr.Message, "no Makefile")
}
