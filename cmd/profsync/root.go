package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/profsync/profsync/internal/config"
	"github.com/profsync/profsync/internal/engine"
	"github.com/profsync/profsync/internal/utils"
	"github.com/profsync/profsync/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "config"
)

var (
	green  = color.New(color.FgHiGreen).SprintFunc()
	cyan   = color.New(color.FgHiCyan).SprintFunc()
	yellow = color.New(color.FgHiYellow).SprintFunc()
)

var errAlreadyRunning = errors.New("another profsync operation is already running")

var rootCmd = &cobra.Command{
	Use:     "profsync",
	Short:   "Mirror browser profile data between this machine and a NAS",
	Version: version.Detailed(),
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "profsync config file")
	rootCmd.PersistentFlags().StringP("dest", "d", "", "destination (NAS) root holding backups and the ledger")
	rootCmd.PersistentFlags().StringP("primary", "p", "", "primary profile root")
	rootCmd.PersistentFlags().StringP("secondary", "s", "", "secondary profile root (split topology)")
	rootCmd.PersistentFlags().StringSlice("categories", nil, "category names to sync (empty = all)")
	rootCmd.PersistentFlags().StringSlice("exclude", nil, "extra glob patterns to exclude")
}

// loadConfig merges flags, PROFSYNC_* env vars and the JSON config file into
// a validated Config, generating and persisting the machine id on first run.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(config.DefaultConfigDir)
		viper.AddConfigPath(filepath.Join(home, ".config/profsync"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return nil, fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.BindPFlag("destination_root", cmd.Flags().Lookup("dest"))
	viper.BindPFlag("primary_root", cmd.Flags().Lookup("primary"))
	viper.BindPFlag("secondary_root", cmd.Flags().Lookup("secondary"))
	viper.BindPFlag("categories", cmd.Flags().Lookup("categories"))
	viper.BindPFlag("excludes", cmd.Flags().Lookup("exclude"))

	viper.SetEnvPrefix("PROFSYNC")
	viper.AutomaticEnv()

	cfg := &config.Config{
		Path:            viper.ConfigFileUsed(),
		DestinationRoot: viper.GetString("destination_root"),
		PrimaryRoot:     viper.GetString("primary_root"),
		SecondaryRoot:   viper.GetString("secondary_root"),
		Categories:      viper.GetStringSlice("categories"),
		Excludes:        viper.GetStringSlice("excludes"),
		MachineID:       viper.GetString("machine_id"),
		State: config.State{
			LastUpload:   viper.GetTime("state.last_upload"),
			LastDownload: viper.GetTime("state.last_download"),
			LastSync:     viper.GetTime("state.last_sync"),
		},
	}
	if cfg.Path == "" {
		cfg.Path = config.DefaultConfigPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.EnsureMachineID() {
		if err := cfg.Save(cfg.Path); err != nil {
			slog.Warn("failed to persist machine id", "path", cfg.Path, "error", err)
		}
	}

	return cfg, nil
}

func newEngine(cmd *cobra.Command) (*engine.Engine, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	return engine.New(afero.NewOsFs(), cfg, slog.Default()), cfg, nil
}

// acquireLock guards against two concurrent operations on this machine. The
// NAS side stays lock-free; last writer wins on the ledger there.
func acquireLock() (*flock.Flock, error) {
	if err := utils.EnsureParent(afero.NewOsFs(), config.DefaultLockPath); err != nil {
		return nil, err
	}

	fl := flock.New(config.DefaultLockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", config.DefaultLockPath, err)
	}
	if !locked {
		return nil, errAlreadyRunning
	}
	return fl, nil
}

// saveState persists the last-operation timestamps after a successful run.
// A failure here is logged, never fatal: the operation itself succeeded.
func saveState(cfg *config.Config, update func(*config.State, time.Time)) {
	update(&cfg.State, time.Now().UTC())
	if err := cfg.Save(cfg.Path); err != nil {
		slog.Warn("failed to persist state", "path", cfg.Path, "error", err)
	}
}
