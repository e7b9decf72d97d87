package engine

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupResolver_LiteralPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/nas/20240101-120000-alice", 0o755))

	res, err := NewBackupResolver(fs).Resolve("/nas", "20240101-120000-alice")
	require.NoError(t, err)
	assert.Equal(t, ResolutionFound, res.Kind)
	assert.Equal(t, filepath.Join("/nas", "20240101-120000-alice"), res.Path)
}

func TestBackupResolver_FallbackByDateTimePrefix(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/nas/20240101-120000-alice-old", 0o755))

	res, err := NewBackupResolver(fs).Resolve("/nas", "20240101-120000-alice")
	require.NoError(t, err)
	assert.Equal(t, ResolutionFallback, res.Kind)
	assert.Equal(t, filepath.Join("/nas", "20240101-120000-alice-old"), res.Path)
}

func TestBackupResolver_FallbackIgnoresFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/nas/20240101-120000-notes.txt", []byte("x"), 0o644))

	_, err := NewBackupResolver(fs).Resolve("/nas", "20240101-120000-alice")
	require.ErrorIs(t, err, ErrBackupNotFound)
}

func TestBackupResolver_NotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/nas/20231231-000000-bob", 0o755))

	res, err := NewBackupResolver(fs).Resolve("/nas", "20240101-120000-alice")
	require.ErrorIs(t, err, ErrBackupNotFound)
	assert.Equal(t, ResolutionNotFound, res.Kind)
}

func TestBackupResolver_Layouts(t *testing.T) {
	cases := []struct {
		name     string
		dirs     []string
		expected []string
	}{
		{"unified", []string{"profile"}, []string{"profile"}},
		{"profile-wins-over-split", []string{"profile", "roaming", "local"}, []string{"profile"}},
		{"split-full", []string{"roaming", "local"}, []string{"roaming", "local"}},
		{"split-roaming-only", []string{"roaming"}, []string{"roaming"}},
		{"unrecognized", []string{"misc"}, nil},
		{"empty", nil, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			backupDir := "/nas/20240101-120000-alice"
			require.NoError(t, fs.MkdirAll(backupDir, 0o755))
			for _, d := range c.dirs {
				require.NoError(t, fs.MkdirAll(filepath.Join(backupDir, d), 0o755))
			}

			assert.Equal(t, c.expected, NewBackupResolver(fs).Layouts(backupDir))
		})
	}
}
