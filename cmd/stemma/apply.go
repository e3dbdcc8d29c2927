package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stemma-md/stemma"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Rename every note in the watched folders at once",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		service, err := stemma.New(vaultPath,
			stemma.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to initialize stemma", err)
		}

		summary, err := service.RenameAll(context.Background())
		fmt.Printf("Renamed %d of %d notes", summary.Renamed, summary.Attempted)
		if summary.Failed > 0 {
			fmt.Printf(" (%d failed)", summary.Failed)
		}
		fmt.Println()

		if err != nil {
			fatal("Some renames failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
}
