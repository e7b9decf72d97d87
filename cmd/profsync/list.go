package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/profsync/profsync/internal/engine"
)

var (
	listHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	listMissingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	listDimStyle     = lipgloss.NewStyle().Faint(true)
)

func init() {
	rootCmd.AddCommand(newListCmd())
}

func newListCmd() *cobra.Command {
	var showAll bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded backups and sync operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			eng, _, err := newEngine(cmd)
			if err != nil {
				return err
			}

			statuses, err := eng.ListBackups()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(statuses) == 0 {
				fmt.Fprintln(out, "no sync operations recorded yet")
				return nil
			}

			fmt.Fprintln(out, listHeaderStyle.Render(fmt.Sprintf(
				"%-28s %-9s %-16s %6s  %-12s %s",
				"BACKUP ID", "TYPE", "WHEN", "FILES", "MACHINE", "CATEGORIES")))

			// Newest last in the ledger; print newest first.
			for i := len(statuses) - 1; i >= 0; i-- {
				s := statuses[i]
				if !showAll && s.SyncType != engine.SyncTypeUpload {
					continue
				}

				id := s.BackupID
				if s.Missing {
					id = listMissingStyle.Render(id + " (missing)")
				}

				line := fmt.Sprintf("%-28s %-9s %-16s %6d  %-12s %s",
					id,
					s.SyncType,
					humanize.Time(s.Timestamp),
					s.FileCount,
					s.MachineName,
					listDimStyle.Render(strings.Join(s.Categories, ",")))
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	listCmd.Flags().BoolVarP(&showAll, "all", "a", false, "include download and sync records")
	return listCmd
}
