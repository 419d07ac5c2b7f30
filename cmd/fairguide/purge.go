package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge-cache",
	Short: "Remove cached logos and advertisements",
	Long:  "Removes every downloaded asset so the next render fetches them again. Placeholders are kept.",
	Args:  cobra.NoArgs,
	RunE:  runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := a.assets.Purge(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Purged asset cache in %s\n", a.cfg.CacheDir())
	return nil
}
