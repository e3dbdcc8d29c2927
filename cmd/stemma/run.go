package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stemma-md/stemma"
	"github.com/stemma-md/stemma/pkg/adapters/fs"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the vault and rename notes as they change",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger := slog.Default()

		repo := fs.NewRepository(fs.Config{
			Root:   vaultPath,
			Logger: logger,
		})
		if err := repo.Initialize(context.Background()); err != nil {
			fatal("Failed to open vault", err)
		}

		service, err := stemma.New(vaultPath,
			stemma.WithStorage(repo),
			stemma.WithNotifier(repo),
			stemma.WithLogger(logger),
		)
		if err != nil {
			fatal("Failed to initialize stemma", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := repo.StartWatch(ctx); err != nil {
			fatal("Failed to start watcher", err)
		}
		defer repo.StopWatch(context.Background())

		fmt.Printf("Watching %s (Ctrl-C to stop)\n", vaultPath)
		if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fatal("Watch loop failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
