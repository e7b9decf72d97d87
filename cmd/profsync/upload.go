package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/profsync/profsync/internal/config"
	"github.com/profsync/profsync/internal/engine"
)

func init() {
	rootCmd.AddCommand(newUploadCmd())
}

func newUploadCmd() *cobra.Command {
	var dryRun bool

	uploadCmd := &cobra.Command{
		Use:   "upload",
		Short: "Back up the selected categories into a new timestamped folder on the NAS",
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

			res, err := eng.Upload(cmd.Context(), engine.Options{DryRun: dryRun})
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%s would upload %d files as %s\n", yellow("dry-run:"), res.FilesCopied, cyan(res.BackupID))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d files)\n", green("backup created:"), cyan(res.BackupID), res.FilesCopied)
			saveState(cfg, func(s *config.State, now time.Time) { s.LastUpload = now })
			return nil
		},
	}

	uploadCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "preview the upload without copying")
	return uploadCmd
}
