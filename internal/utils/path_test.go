package utils

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	_, err := ResolvePath("")
	require.Error(t, err)

	abs, err := ResolvePath("some/relative/../path")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
	assert.NotContains(t, abs, "..")
}

func TestEnsureDirAndExists(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, EnsureDir(fs, "/a/b/c"))
	assert.True(t, DirExists(fs, "/a/b/c"))
	assert.False(t, FileExists(fs, "/a/b/c"))

	// Idempotent.
	require.NoError(t, EnsureDir(fs, "/a/b/c"))

	require.NoError(t, EnsureParent(fs, "/x/y/file.txt"))
	assert.True(t, DirExists(fs, "/x/y"))

	require.NoError(t, afero.WriteFile(fs, "/x/y/file.txt", []byte("hi"), 0o644))
	assert.True(t, FileExists(fs, "/x/y/file.txt"))
	assert.False(t, DirExists(fs, "/x/y/file.txt"))
	assert.False(t, FileExists(fs, "/missing"))
}
