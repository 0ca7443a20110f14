package hcl_adapter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/boardsmith/internal/testutil"
)

func TestLoader_MergesFilesInOrder(t *testing.T) {
	ctx, _ := testutil.Context(t)
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"home.hcl": `
arduino_root    = "/opt/arduino"
arduino_version = "1.0.5"
compile_root    = "~/.cache/boardsmith"

library "Adafruit_GFX" {
  depends_on = ["SPI"]
}

library "Ethernet" {
  depends_on = ["SPI"]
}
`,
		"project.hcl": `
arduino_version = 158
build_tool      = "make -s"

library "Ethernet" {
  depends_on = ["SPI", "Wire"]
}

library "Servo" {}
`,
	})

	model, err := NewLoader().Load(ctx,
		filepath.Join(dir, "home.hcl"),
		filepath.Join(dir, "missing.hcl"),
		filepath.Join(dir, "project.hcl"),
	)
	require.NoError(t, err)

	assert.Equal(t, "/opt/arduino", model.ArduinoRoot)
	assert.Equal(t, 158, model.ArduinoVersion)
	assert.Equal(t, "~/.cache/boardsmith", model.CompileRoot)
	assert.Empty(t, model.ToolRoot)
	assert.Equal(t, []string{"make", "-s"}, model.BuildTool)
	assert.Equal(t, map[string][]string{
		"Adafruit_GFX": {"SPI"},
		"Ethernet":     {"SPI", "Wire"},
		"Servo":        nil,
	}, model.Libraries)
}

func TestLoader_BuildToolAsList(t *testing.T) {
	ctx, _ := testutil.Context(t)
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.hcl": `build_tool = ["/usr/bin/make", "-j", "1"]`,
	})

	model, err := NewLoader().Load(ctx, filepath.Join(dir, "a.hcl"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/bin/make", "-j", "1"}, model.BuildTool)
	assert.Zero(t, model.ArduinoVersion)
}

func TestLoader_NoFiles(t *testing.T) {
	ctx, _ := testutil.Context(t)
	model, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), "nothing.hcl"))
	require.NoError(t, err)
	assert.Empty(t, model.ArduinoRoot)
	assert.Nil(t, model.Libraries)
}

func TestLoader_Errors(t *testing.T) {
	cases := map[string]struct {
		src  string
		want string
	}{
		"syntax":            {`arduino_root = `, "failed to parse"},
		"unknown attribute": {`arduino_rot = "/x"`, "failed to decode"},
		"bad version":       {`arduino_version = "nightly"`, "arduino_version"},
		"null version":      {`arduino_version = null`, "must not be null"},
		"object version":    {`arduino_version = { a = 1 }`, "string or a number"},
		"empty tool":        {`build_tool = "  "`, "must not be empty"},
		"duplicate library": {"library \"A\" {}\nlibrary \"A\" {}\n", "declared more than once"},
		"wrong deps type":   {"library \"A\" {\n  depends_on = \"SPI\"\n}\n", "failed to decode"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx, _ := testutil.Context(t)
			dir := t.TempDir()
			testutil.WriteFiles(t, dir, map[string]string{"bad.hcl": tc.src})

			_, err := NewLoader().Load(ctx, filepath.Join(dir, "bad.hcl"))
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}
