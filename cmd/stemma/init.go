package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stemma-md/stemma/pkg/adapters/fs"
	"github.com/stemma-md/stemma/pkg/core"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the system directory and a default config in the vault",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		settings := fs.NewSettings(vaultPath, "", slog.Default())
		if err := settings.Save(core.DefaultConfig()); err != nil {
			fatal("Failed to write default config", err)
		}
		fmt.Printf("Initialized %s\n", settings.Path())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
