package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/boardsmith/internal/cli"
	"github.com/vk/boardsmith/internal/testutil"
)

func TestRun_ConfigError(t *testing.T) {
	// --- Arrange ---
	// A settings file with a syntax error makes app construction fail.
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"bad.hcl": "arduino_root = \n"})
	args := []string{"-config", dir + "/bad.hcl", "order", "SPI"}
	out, logs := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, logs, args)

	// --- Assert ---
	var exitErr *cli.ExitError
	require.True(t, errors.As(runErr, &exitErr))
	require.Equal(t, cli.CodeFailure, exitErr.Code)
	require.Contains(t, exitErr.Message, "failed to parse")
	require.Empty(t, out.String())
}

func TestRun_Order(t *testing.T) {
	// --- Arrange ---
	root := testutil.NewArduinoTree(t)
	t.Setenv("BOARDSMITH_ARDUINO_ROOT", root)
	t.Setenv("BOARDSMITH_COMPILE_ROOT", t.TempDir())
	out, logs := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(out, logs, []string{"order", "Ethernet"})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "core SPI Ethernet\n", out.String())
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}

	// --- Act ---
	err := run(&bytes.Buffer{}, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
