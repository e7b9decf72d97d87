package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/profsync/profsync/internal/config"
	"github.com/profsync/profsync/internal/engine"
)

func init() {
	rootCmd.AddCommand(newDownloadCmd())
}

func newDownloadCmd() *cobra.Command {
	var dryRun bool

	downloadCmd := &cobra.Command{
		Use:   "download <backup-id>",
		Short: "Restore a backup over the local profile (local-only files are removed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			backupID := args[0]

			eng, cfg, err := newEngine(cmd)
			if err != nil {
				return err
			}

			lock, err := acquireLock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			res, err := eng.Download(cmd.Context(), backupID, engine.Options{DryRun: dryRun})
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%s would restore %d files from %s\n", yellow("dry-run:"), res.FilesCopied, cyan(backupID))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d files)\n", green("backup restored:"), cyan(backupID), res.FilesCopied)
			saveState(cfg, func(s *config.State, now time.Time) { s.LastDownload = now })
			return nil
		},
	}

	downloadCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "preview the restore without copying or deleting")
	return downloadCmd
}
