package artifactcache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/boardsmith/internal/faults"
	"github.com/vk/boardsmith/internal/testutil"
)

func TestEnsureDir_Idempotent(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := t.TempDir()
	c := New(root)

	first, err := c.EnsureDir(ctx, "uno", "core")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "uno", "core"), first)

	info, err := os.Stat(first)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm()&0o700, "owner must have rwx")

	require.NoError(t, os.WriteFile(filepath.Join(first, "libcore.a"), []byte("archive"), 0o644))

	second, err := c.EnsureDir(ctx, "uno", "core")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Existing contents are left alone.
	data, err := os.ReadFile(filepath.Join(second, "libcore.a"))
	require.NoError(t, err)
	assert.Equal(t, "archive", string(data))
}

func TestEnsureDir_DistinctPerBoardAndLibrary(t *testing.T) {
	ctx, _ := testutil.Context(t)
	c := New(t.TempDir())

	a, err := c.EnsureDir(ctx, "uno", "SPI")
	require.NoError(t, err)
	b, err := c.EnsureDir(ctx, "mega", "SPI")
	require.NoError(t, err)
	d, err := c.EnsureDir(ctx, "uno", "Wire")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, d)
	assert.Equal(t, c.Path("mega", "SPI"), b)
}

func TestEnsureDir_FilesystemError(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(root, []byte("not a directory"), 0o644))

	_, err := New(root).EnsureDir(ctx, "uno", "core")
	assert.True(t, errors.Is(err, faults.ErrCacheUnavailable))
}

func TestEnsureDir_InvalidKeys(t *testing.T) {
	ctx, _ := testutil.Context(t)
	c := New(t.TempDir())

	for _, tc := range []struct{ board, library string }{
		{"", "core"},
		{"uno", ""},
		{"..", "core"},
		{"uno", "../escape"},
	} {
		_, err := c.EnsureDir(ctx, tc.board, tc.library)
		assert.True(t, errors.Is(err, faults.ErrCacheUnavailable), "board=%q library=%q", tc.board, tc.library)
	}
}
