package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stemma-md/stemma"
	"github.com/stemma-md/stemma/pkg/core"
)

var previewCmd = &cobra.Command{
	Use:   "preview FILE",
	Short: "Show the name a note would get, without renaming it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, err := stemma.New(vaultPath,
			stemma.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to initialize stemma", err)
		}

		doc := core.DocumentFromPath(args[0])
		stem, err := service.Preview(context.Background(), doc)
		if err != nil {
			fatal("Failed to derive name", err)
		}

		fmt.Println(stem)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
