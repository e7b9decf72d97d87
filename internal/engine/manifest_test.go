package engine

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFiles(t *testing.T, fs afero.Fs, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
}

func TestManifestBuilder_IncludeExclude(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/profile", map[string]string{
		"a.txt": "a",
		"b.log": "b",
		"c.bin": "c",
	})

	manifest, err := NewManifestBuilder(fs).Build("/profile", []string{"*.txt", "*.log"}, []string{"*.log"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, manifest)
}

func TestManifestBuilder_RecursiveGlobsAndDotFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/profile", map[string]string{
		"Bookmarks":              "x",
		"Default/Bookmarks":      "x",
		".config/deep/notes.txt": "x",
		"readme.md":              "x",
	})

	manifest, err := NewManifestBuilder(fs).Build("/profile", []string{"**/Bookmarks", "**/*.txt"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		".config/deep/notes.txt",
		"Bookmarks",
		"Default/Bookmarks",
	}, manifest)
}

func TestManifestBuilder_DeduplicatesOverlappingIncludes(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/profile", map[string]string{"a.txt": "a"})

	manifest, err := NewManifestBuilder(fs).Build("/profile", []string{"*.txt", "a.*", "**"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, manifest)
}

func TestManifestBuilder_SingleStarStaysInSegment(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/profile", map[string]string{
		"top.txt":        "x",
		"nested/sub.txt": "x",
	})

	manifest, err := NewManifestBuilder(fs).Build("/profile", []string{"*.txt"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"top.txt"}, manifest)
}

func TestManifestBuilder_MissingRoot(t *testing.T) {
	fs := afero.NewMemMapFs()

	manifest, err := NewManifestBuilder(fs).Build("/nope", []string{"**"}, nil)
	require.ErrorIs(t, err, ErrSourceMissing)
	assert.Empty(t, manifest)
}

func TestManifestBuilder_SyncIgnoreFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/profile", map[string]string{
		"keep.txt":    "x",
		"secret.txt":  "x",
		"cache/x.txt": "x",
		".syncignore": "secret.txt\ncache/\n",
	})

	manifest, err := NewManifestBuilder(fs).Build("/profile", []string{"**"}, nil)
	require.NoError(t, err)

	// The ignore file filters matches and is itself never part of a manifest.
	assert.Equal(t, []string{"keep.txt"}, manifest)
}

func TestManifestBuilder_InvalidPattern(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/profile", map[string]string{"a.txt": "a"})

	_, err := NewManifestBuilder(fs).Build("/profile", []string{"[unclosed"}, nil)
	require.Error(t, err)
}
