package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"matchbox.io/infrastructure"
	startup "matchbox.io/infrastructure/startUp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the task queue worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(ctx context.Context, services *startup.Services) error {
			return infrastructure.StartServer(ctx, services)
		})
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run only the task queue worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(ctx context.Context, services *startup.Services) error {
			return infrastructure.StartWorker(ctx, services)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
}
