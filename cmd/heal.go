package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	startup "matchbox.io/infrastructure/startUp"
)

var healCmd = &cobra.Command{
	Use:   "heal",
	Short: "Clear photo slots whose files no longer exist",
	Long: `Scans every user and clears slot pointers to files that are missing
from the images root. Users left without photos are asked for a new one.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(ctx context.Context, services *startup.Services) error {
			report, err := services.Pipeline.HealAll(ctx)
			if report != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "scanned %d users, healed %d, cleared %d slots\n",
					report.Scanned, report.Healed, report.Cleared)
			}
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(healCmd)
}
