package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		DestinationRoot: t.TempDir(),
		PrimaryRoot:     t.TempDir(),
		Categories:      []string{"bookmarks"},
	}
}

func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	cfg := validConfig(t)
	cfg.MachineID = "machine-1"
	cfg.Excludes = []string{"**/*.tmp"}

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.DestinationRoot, loaded.DestinationRoot)
	assert.Equal(t, cfg.PrimaryRoot, loaded.PrimaryRoot)
	assert.Equal(t, cfg.Categories, loaded.Categories)
	assert.Equal(t, cfg.Excludes, loaded.Excludes)
	assert.Equal(t, "machine-1", loaded.MachineID)
	assert.Equal(t, path, loaded.Path)
}

func TestConfig_LoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{}
	require.ErrorIs(t, cfg.Validate(), ErrNoDestinationRoot)

	cfg.DestinationRoot = t.TempDir()
	require.ErrorIs(t, cfg.Validate(), ErrNoPrimaryRoot)

	cfg.PrimaryRoot = t.TempDir()
	require.NoError(t, cfg.Validate())
	assert.True(t, filepath.IsAbs(cfg.DestinationRoot))
	assert.True(t, filepath.IsAbs(cfg.PrimaryRoot))
}

func TestConfig_Topology(t *testing.T) {
	cfg := validConfig(t)
	assert.True(t, cfg.Unified())

	cfg.SecondaryRoot = cfg.PrimaryRoot
	assert.True(t, cfg.Unified())

	cfg.SecondaryRoot = t.TempDir()
	assert.False(t, cfg.Unified())
}

func TestConfig_EnsureMachineID(t *testing.T) {
	cfg := validConfig(t)

	changed := cfg.EnsureMachineID()
	assert.True(t, changed)
	require.NotEmpty(t, cfg.MachineID)
	first := cfg.MachineID

	// Never regenerated.
	assert.False(t, cfg.EnsureMachineID())
	assert.Equal(t, first, cfg.MachineID)
}
