package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/boardsmith/internal/ctxlog"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Context returns a context carrying a debug logger that writes into a
// SafeBuffer. The log is dumped at the end of the test when
// BOARDSMITH_TEST_LOGS=true.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()

	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() {
		if os.Getenv("BOARDSMITH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return ctxlog.WithLogger(context.Background(), logger), buf
}

// WriteFiles creates every file in files under root. Keys are slash-separated
// paths relative to root; a key ending in "/" creates an empty directory.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// BoardsTxt is the boards.txt written by NewArduinoTree.
const BoardsTxt = `# test boards
uno.name=Arduino Uno
uno.build.mcu=atmega328p
uno.build.f_cpu=16000000L
uno.build.variant=standard

mega.name=Arduino Mega
mega.build.mcu=atmega1280
mega.build.f_cpu=16000000L
mega.build.variant=mega
`

// NewArduinoTree lays out a minimal Arduino 1.0.5 installation in a temporary
// directory and returns its root. It contains the core library (with one
// subdirectory), the standard and mega variants, and the SPI, Ethernet (with
// a utility directory) and Wire libraries.
func NewArduinoTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	WriteFiles(t, root, map[string]string{
		"lib/version.txt":                                   "1.0.5\n",
		"hardware/arduino/boards.txt":                       BoardsTxt,
		"hardware/arduino/cores/arduino/main.cpp":           "",
		"hardware/arduino/cores/arduino/wiring.c":           "",
		"hardware/arduino/cores/arduino/Arduino.h":          "",
		"hardware/arduino/cores/arduino/avr-libc/malloc.c":  "",
		"hardware/arduino/variants/standard/pins_arduino.h": "",
		"hardware/arduino/variants/mega/pins_arduino.h":     "",
		"libraries/SPI/SPI.cpp":                             "",
		"libraries/SPI/SPI.h":                               "",
		"libraries/Ethernet/Ethernet.cpp":                   "",
		"libraries/Ethernet/EthernetClient.cpp":             "",
		"libraries/Ethernet/Ethernet.h":                     "",
		"libraries/Ethernet/utility/w5100.cpp":              "",
		"libraries/Ethernet/utility/socket.c":               "",
		"libraries/Wire/Wire.cpp":                           "",
		"libraries/Wire/utility/twi.c":                      "",
	})
	return root
}

// WriteScript writes an executable shell script to dir/name and returns its path.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}
