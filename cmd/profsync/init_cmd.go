package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/profsync/profsync/internal/config"
	"github.com/profsync/profsync/internal/engine"
)

func init() {
	rootCmd.AddCommand(newInitCmd())
}

func newInitCmd() *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			path, _ := cmd.Flags().GetString("config")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			cfg := &config.Config{
				DestinationRoot: cmd.Flag("dest").Value.String(),
				PrimaryRoot:     cmd.Flag("primary").Value.String(),
				SecondaryRoot:   cmd.Flag("secondary").Value.String(),
				Categories:      engine.CategoryNames(),
			}
			cfg.EnsureMachineID()

			if err := cfg.Save(path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("config written:"), path)
			fmt.Fprintf(cmd.OutOrStdout(), "categories: %s\n", cyan(fmt.Sprint(engine.CategoryNames())))
			return nil
		},
	}

	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config")
	return initCmd
}
