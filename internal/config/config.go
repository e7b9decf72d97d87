// Package config owns the on-disk profsync configuration: the destination
// root on the NAS, the local profile root(s), the category selection and the
// persisted machine identity. The engine consumes a Config but never writes
// one; only the CLI persists it.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/profsync/profsync/internal/utils"
)

const AppName = "profsync"

var (
	home, _            = os.UserHomeDir()
	DefaultConfigDir   = filepath.Join(home, ".profsync")
	DefaultConfigPath  = filepath.Join(DefaultConfigDir, "config.json")
	DefaultLogFilePath = filepath.Join(DefaultConfigDir, "logs", "profsync.log")
	DefaultLockPath    = filepath.Join(DefaultConfigDir, "profsync.lock")
)

var (
	ErrNoDestinationRoot = errors.New("destination_root is not set")
	ErrNoPrimaryRoot     = errors.New("primary_root is not set")
)

// State carries the last-operation timestamps, updated by the CLI after each
// successful engine call.
type State struct {
	LastUpload   time.Time `json:"last_upload" mapstructure:"last_upload"`
	LastDownload time.Time `json:"last_download" mapstructure:"last_download"`
	LastSync     time.Time `json:"last_sync" mapstructure:"last_sync"`
}

type Config struct {
	// DestinationRoot is the NAS folder that holds backups and the ledger.
	DestinationRoot string `json:"destination_root" mapstructure:"destination_root"`

	// PrimaryRoot is the main profile root. On split-topology systems it is
	// the roaming half; on unified systems it is the whole profile.
	PrimaryRoot string `json:"primary_root" mapstructure:"primary_root"`

	// SecondaryRoot is the optional local half of a split profile. Empty (or
	// equal to PrimaryRoot) means unified topology.
	SecondaryRoot string `json:"secondary_root,omitempty" mapstructure:"secondary_root"`

	// Categories is the selected category names; empty means all.
	Categories []string `json:"categories" mapstructure:"categories"`

	// Excludes is extra glob patterns filtered out of every manifest.
	Excludes []string `json:"excludes" mapstructure:"excludes"`

	// MachineID is a stable identifier, generated once and never regenerated.
	MachineID string `json:"machine_id" mapstructure:"machine_id"`

	State State `json:"state" mapstructure:"state"`

	Path string `json:"-" mapstructure:"-"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Path = path
	return &cfg, nil
}

func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(afero.NewOsFs(), path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Validate() error {
	if c.DestinationRoot == "" {
		return ErrNoDestinationRoot
	}
	if c.PrimaryRoot == "" {
		return ErrNoPrimaryRoot
	}

	var err error
	if c.DestinationRoot, err = utils.ResolvePath(c.DestinationRoot); err != nil {
		return err
	}
	if c.PrimaryRoot, err = utils.ResolvePath(c.PrimaryRoot); err != nil {
		return err
	}
	if c.SecondaryRoot != "" {
		if c.SecondaryRoot, err = utils.ResolvePath(c.SecondaryRoot); err != nil {
			return err
		}
	}
	return nil
}

// Unified reports whether the profile lives in a single root. Topology is
// detected once per run by comparing the two configured roots.
func (c *Config) Unified() bool {
	return c.SecondaryRoot == "" || c.SecondaryRoot == c.PrimaryRoot
}

// EnsureMachineID fills in MachineID on first run and reports whether the
// config changed. An existing id is never regenerated.
func (c *Config) EnsureMachineID() bool {
	if c.MachineID != "" {
		return false
	}

	if id, err := machineid.ProtectedID(AppName); err == nil {
		c.MachineID = id
	} else {
		c.MachineID = uuid.NewString()
	}
	return true
}
