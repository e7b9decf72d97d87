package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/profsync/profsync/internal/config"
	"github.com/profsync/profsync/internal/engine"
)

func init() {
	rootCmd.AddCommand(newSyncCmd())
}

func newSyncCmd() *cobra.Command {
	var dryRun bool

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Merge the local profile with the latest backup in both directions",
		Long: `Merge the local profile with the latest uploaded backup without deleting
on either side. Files present only on one side propagate to the other; when a
path exists on both sides the backup copy wins. Falls back to a plain upload
when no usable backup exists yet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			eng, cfg, err := newEngine(cmd)
			if err != nil {
				return err
			}

			lock, err := acquireLock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			res, err := eng.SmartSync(cmd.Context(), engine.Options{DryRun: dryRun})
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%s would move %d files\n", yellow("dry-run:"), res.FilesCopied)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %d files moved\n", green("sync complete:"), res.FilesCopied)
			saveState(cfg, func(s *config.State, now time.Time) {
				s.LastSync = now
				// A degraded sync is an upload; keep that timestamp fresh too.
				if res.Record != nil && res.Record.SyncType == engine.SyncTypeUpload {
					s.LastUpload = now
				}
			})
			return nil
		},
	}

	syncCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "preview the sync without copying")
	return syncCmd
}
