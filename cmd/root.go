package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"matchbox.io/infrastructure/env"
	"matchbox.io/infrastructure/logger"
	startup "matchbox.io/infrastructure/startUp"
)

var rootCmd = &cobra.Command{
	Use:   "matchbox",
	Short: "Photo intake and moderation service",
	Long: `Matchbox receives profile photos from the dating mini app, checks them
for a face, for authenticity and for the declared gender, and stores
accepted photos in the three profile slots of the user.
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env.LoadEnv()
		logger.InitializeLogger()
	},
}

// Execute executes the root command.
func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd.Execute()
}

// withServices runs fn with the services built from the environment and a
// context that ends on SIGINT or SIGTERM.
func withServices(fn func(ctx context.Context, services *startup.Services) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := startup.StartServices(ctx, env.Read())
	if err != nil {
		logger.Error("could not start services", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return err
	}
	defer services.CleanUp(context.Background())
	return fn(ctx, services)
}
