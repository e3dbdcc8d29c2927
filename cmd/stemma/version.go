package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stemma-md/stemma"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stemma",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stemma version %s\n", strings.TrimSpace(stemma.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
